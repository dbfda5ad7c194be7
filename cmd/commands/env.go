package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/config"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/logging"
	"github.com/dohr-michael/taskboard/internal/storage"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// env is everything a command needs to work on the task collection.
type env struct {
	cfg       *config.Config
	logger    *log.Logger
	kv        storage.KV
	persister *storage.SnapshotPersister
	seed      []tasks.Task
	source    tasks.Source
	board     *tasks.Board
	bus       *events.Bus
	eventLog  *storage.EventLogger
}

// loadConfig reads the config named by --config and installs the logger.
func loadConfig(cmd *cli.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if cmd.Bool("debug") {
		level = "debug"
	}
	logger := logging.Setup(errWriter(cmd), logging.Options{
		Level:     level,
		Format:    cfg.Log.Format,
		Timestamp: true,
	})
	return cfg, logger, nil
}

// openEnv loads config, opens storage and builds the board. Mutations made
// through the board are published with source and appended to the event log.
func openEnv(ctx context.Context, cmd *cli.Command, source events.EventSource) (*env, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Bool("ephemeral") {
		cfg.Storage.Driver = "memory"
	}

	kv, err := storage.Open(ctx, storage.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	seed, err := tasks.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	bus := events.NewBus(cfg.Events.BufferSize)

	persister := storage.NewSnapshotPersister(kv, cfg.Storage.Key)
	persister.OnSaveError(func(err error, count int) {
		bus.Publish(events.NewTypedEvent(source, events.StorageSaveFailedPayload{
			Error: err.Error(),
			Count: count,
		}))
	})
	initial, src := tasks.Load(persister, seed)
	slog.Debug("tasks loaded", "source", src, "count", len(initial), "driver", cfg.Storage.Driver)

	board := tasks.NewBoard(tasks.NewStore(initial, persister), tasks.NewClockIDs(tasks.MaxID(initial)))

	var eventLog *storage.EventLogger
	if cfg.Events.LogDir != "" {
		eventLog = storage.NewEventLogger(cfg.Events.LogDir, bus)
	}
	events.Bridge(bus, board, source)

	return &env{
		cfg:       cfg,
		logger:    logger,
		kv:        kv,
		persister: persister,
		seed:      seed,
		source:    src,
		board:     board,
		bus:       bus,
		eventLog:  eventLog,
	}, nil
}

// Close flushes pending events and releases storage.
func (e *env) Close() {
	e.bus.Close()
	if e.eventLog != nil {
		e.eventLog.Close()
	}
	if err := e.kv.Close(); err != nil {
		slog.Warn("close storage", "error", err)
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// taskIDArg parses the first positional argument as a task id.
func taskIDArg(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("usage: taskboard %s <id>", cmd.Name)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
