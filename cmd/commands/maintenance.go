package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"filippo.io/age"

	"github.com/dohr-michael/taskboard/internal/backup"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/scheduler"
	"github.com/dohr-michael/taskboard/internal/secrets"
	"github.com/dohr-michael/taskboard/internal/storage"
)

const (
	jobBackup      = "backup"
	jobPruneEvents = "prune-events"
)

// backupRecipient returns the configured age recipient, or nil when
// backups are written in plain JSON.
func (e *env) backupRecipient() (age.Recipient, error) {
	raw := e.cfg.Backup.Recipient
	if raw == "" {
		raw = os.Getenv(secrets.RecipientEnv)
	}
	if raw == "" {
		return nil, nil
	}
	return secrets.ParseRecipient(raw)
}

// writeBackup saves the current collection to the backup dir and prunes
// old copies.
func (e *env) writeBackup(source events.EventSource) (backup.Info, error) {
	recipient, err := e.backupRecipient()
	if err != nil {
		return backup.Info{}, err
	}

	snapshot := e.board.Store().Snapshot()
	info, err := backup.Write(e.cfg.Backup.Dir, snapshot, recipient, time.Now())
	if err != nil {
		return backup.Info{}, err
	}

	e.bus.Publish(events.NewTypedEvent(source, events.BackupCreatedPayload{
		Path:      info.Path,
		Count:     len(snapshot),
		Encrypted: info.Encrypted,
	}))

	removed, err := backup.Prune(e.cfg.Backup.Dir, e.cfg.Backup.Keep)
	if err != nil {
		slog.Warn("prune backups", "error", err)
	} else if len(removed) > 0 {
		slog.Debug("pruned backups", "removed", len(removed))
	}
	return info, nil
}

// newMaintenance registers the background jobs run by `serve`.
func newMaintenance(e *env) (*scheduler.Scheduler, error) {
	s := scheduler.New(e.bus)

	// Also runs when a snapshot write fails, so the data survives somewhere.
	err := s.Add(scheduler.Job{
		Name:     jobBackup,
		Cron:     e.cfg.Backup.Schedule,
		OnEvents: []events.EventType{events.EventStorageSaveFailed},
		Cooldown: 5 * time.Minute,
		Run: func(context.Context) error {
			info, err := e.writeBackup(events.SourceCron)
			if errors.Is(err, backup.ErrEmpty) {
				return nil
			}
			if err != nil {
				return err
			}
			slog.Info("backup written", "path", info.Path, "encrypted", info.Encrypted)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if e.cfg.Events.LogDir != "" && e.cfg.Events.RetentionDays > 0 {
		retention := time.Duration(e.cfg.Events.RetentionDays) * 24 * time.Hour
		err := s.Add(scheduler.Job{
			Name: jobPruneEvents,
			Cron: e.cfg.Events.PruneSchedule,
			Run: func(context.Context) error {
				removed, err := storage.PruneEventLog(e.cfg.Events.LogDir, retention, time.Now())
				if len(removed) > 0 {
					slog.Info("pruned event log", "files", len(removed))
				}
				return err
			},
		})
		if err != nil {
			return nil, fmt.Errorf("events.prune_schedule: %w", err)
		}
	}
	return s, nil
}
