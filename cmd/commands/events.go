package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/storage"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// NewEventsCommand returns the events subcommand.
func NewEventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Show recent task changes from the event log",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of events to show (0 for all)",
				Value:   20,
			},
		},
		Action: runEvents,
	}
}

func runEvents(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	list, err := storage.ReadEventLog(cfg.Events.LogDir, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}

	out := writer(cmd)
	if len(list) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tSOURCE\tTASK")
	for _, ev := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			ev.Type,
			ev.Source,
			describeTask(ev),
		)
	}
	return w.Flush()
}

func describeTask(ev events.Event) string {
	switch ev.Type {
	case events.EventTaskCreated:
		if p, ok := events.ExtractPayload[events.TaskCreatedPayload](ev); ok {
			return taskLabel(p.Task)
		}
	case events.EventTaskUpdated:
		if p, ok := events.ExtractPayload[events.TaskUpdatedPayload](ev); ok {
			return taskLabel(p.Task)
		}
	case events.EventTaskDeleted:
		if p, ok := events.ExtractPayload[events.TaskDeletedPayload](ev); ok {
			return taskLabel(p.Task)
		}
	case events.EventTaskToggled:
		if p, ok := events.ExtractPayload[events.TaskToggledPayload](ev); ok {
			return taskLabel(p.Task) + " (" + p.Task.StatusLabel() + ")"
		}
	case events.EventTasksReset:
		if p, ok := events.ExtractPayload[events.TasksResetPayload](ev); ok {
			return fmt.Sprintf("%d tasks", p.Count)
		}
	case events.EventBackupCreated:
		if p, ok := events.ExtractPayload[events.BackupCreatedPayload](ev); ok {
			return fmt.Sprintf("%d tasks to %s", p.Count, filepath.Base(p.Path))
		}
	case events.EventStorageSaveFailed:
		if p, ok := events.ExtractPayload[events.StorageSaveFailedPayload](ev); ok {
			return p.Error
		}
	}
	return "-"
}

func taskLabel(t tasks.Task) string {
	return fmt.Sprintf("%d %s", t.ID, t.Title)
}
