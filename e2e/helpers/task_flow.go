// Command task_flow exercises the task lifecycle against a running gateway
// over WebSocket.
//
// It creates a task, toggles it, edits it and deletes it, checking that the
// matching event frame and a fresh snapshot arrive after each call.
//
// Usage: task_flow -gateway ws://127.0.0.1:PORT/api/ws
//
// Exit codes:
//
//	0 = all checks passed
//	1 = a check failed
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	wsclient "github.com/dohr-michael/taskboard/clients/ws"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

func main() {
	gatewayURL := flag.String("gateway", "ws://127.0.0.1:18421/api/ws", "Gateway WS URL")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *gatewayURL); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gatewayURL string) error {
	client, err := wsclient.Dial(ctx, gatewayURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer client.Close()

	before, err := client.ListTasks(ctx, "")
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	fmt.Printf("CHECK connected, %d tasks\n", len(before))

	created, err := client.CreateTask(ctx, tasks.Fields{
		Title:       "e2e task",
		Description: "created by task_flow",
		Priority:    tasks.PriorityHigh,
	})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := expect(ctx, client, events.EventTaskCreated, created.ID, len(before)+1); err != nil {
		return err
	}

	toggled, err := client.ToggleTask(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("toggle: %w", err)
	}
	if !toggled.Completed {
		return fmt.Errorf("toggle did not complete task %d", created.ID)
	}
	if err := expect(ctx, client, events.EventTaskToggled, created.ID, len(before)+1); err != nil {
		return err
	}

	edited, err := client.UpdateTask(ctx, created.ID, tasks.Fields{
		Title:       "e2e task (edited)",
		Description: "edited by task_flow",
		Priority:    tasks.PriorityLow,
	})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if !edited.Completed {
		return fmt.Errorf("edit must keep completion state")
	}
	if err := expect(ctx, client, events.EventTaskUpdated, created.ID, len(before)+1); err != nil {
		return err
	}

	if _, err := client.DeleteTask(ctx, created.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := expect(ctx, client, events.EventTaskDeleted, created.ID, len(before)); err != nil {
		return err
	}

	fmt.Println("CHECK all flow checks passed")
	return nil
}

// expect reads event frames until it has seen eventType for id followed by
// a snapshot holding want tasks.
func expect(ctx context.Context, client *wsclient.Client, eventType events.EventType, id int64, want int) error {
	seen := false
	for {
		if ctx.Err() != nil {
			return fmt.Errorf("timeout waiting for %s", eventType)
		}
		frame, err := client.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		switch events.EventType(frame.Event) {
		case eventType:
			var p events.TaskCreatedPayload
			if err := json.Unmarshal(frame.Payload, &p); err != nil || p.Task.ID != id {
				continue
			}
			seen = true
			fmt.Printf("CHECK %s received for task %d\n", eventType, id)

		case events.EventTasksSnapshot:
			if !seen {
				continue
			}
			var p events.TasksSnapshotPayload
			if err := json.Unmarshal(frame.Payload, &p); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			if len(p.Tasks) != want {
				return fmt.Errorf("snapshot after %s has %d tasks, want %d", eventType, len(p.Tasks), want)
			}
			return nil
		}
	}
}
