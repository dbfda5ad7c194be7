package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventTaskCreated)

	bus.Publish(NewTypedEvent(SourceCLI, TaskCreatedPayload{Task: tasks.Task{ID: 1, Title: "a"}}))
	bus.Publish(NewTypedEvent(SourceCLI, TaskDeletedPayload{Task: tasks.Task{ID: 1}}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventTaskCreated {
		t.Errorf("expected task.created, got %s", received[0].Type)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewTypedEvent(SourceCLI, TaskCreatedPayload{}))
	bus.Publish(NewTypedEvent(SourceCLI, TaskToggledPayload{}))
	bus.Publish(NewTypedEvent(SourceCLI, TasksResetPayload{Count: 3}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(8, EventTaskDeleted)
	unsub()
	unsub()

	bus.Publish(NewTypedEvent(SourceCLI, TaskDeletedPayload{}))
	if _, open := <-ch; open {
		t.Error("expected channel closed after unsubscribe")
	}
}

func TestBusSubscribeChan(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(8, EventTaskToggled)
	defer unsub()

	bus.Publish(NewTypedEvent(SourceTUI, TaskToggledPayload{Task: tasks.Task{ID: 7, Completed: true}}))

	select {
	case e := <-ch:
		if e.Type != EventTaskToggled {
			t.Errorf("expected task.toggled, got %s", e.Type)
		}
		if e.Source != SourceTUI {
			t.Errorf("expected source tui, got %s", e.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Close()

	bus.Publish(NewTypedEvent(SourceCLI, TaskCreatedPayload{}))
	err := bus.PublishContext(context.Background(), NewTypedEvent(SourceCLI, TaskCreatedPayload{}))
	if err != ErrBusClosed {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
}

func TestBusHistory(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	for i := int64(1); i <= 3; i++ {
		bus.Publish(NewTypedEvent(SourceCLI, TaskCreatedPayload{Task: tasks.Task{ID: i}}))
	}
	time.Sleep(50 * time.Millisecond)

	history := bus.History(2)
	if len(history) != 2 {
		t.Fatalf("expected 2 events, got %d", len(history))
	}
	last, ok := ExtractPayload[TaskCreatedPayload](history[1])
	if !ok || last.Task.ID != 3 {
		t.Errorf("expected newest event last, got %+v", history[1].Payload)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Add(Event{Type: EventType(string(rune('a' + i)))})
	}

	events := rb.Get(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != "c" || events[2].Type != "e" {
		t.Errorf("unexpected order: %s..%s", events[0].Type, events[2].Type)
	}
	if got := rb.Get(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestBusCloseDeliversQueued(t *testing.T) {
	bus := NewBus(64)

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		bus.Publish(NewEvent(EventTasksReset, SourceCLI, nil))
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 20 {
		t.Errorf("delivered %d events before Close returned, want 20", count)
	}
	bus.Close() // second close is a no-op
}
