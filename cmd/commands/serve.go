package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/config"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/gateway"
	"github.com/dohr-michael/taskboard/internal/heartbeat"
	"github.com/dohr-michael/taskboard/internal/logging"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"gateway"},
		Usage:   "Start the taskboard gateway (web page, REST API, WebSocket)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	e, err := openEnv(ctx, cmd, events.SourceGateway)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	slog.Info("tasks ready", "source", e.source, "count", e.board.Store().Len(), "storage", cfg.Storage.Driver)

	server := gateway.NewServer(e.bus, e.board, cfg.Gateway.Host, cfg.Gateway.Port)

	// Heartbeat for `taskboard status`
	hb := heartbeat.NewWriter(config.HeartbeatPath(), func() heartbeat.Info {
		return heartbeat.Info{
			Addr:    server.Addr(),
			Storage: cfg.Storage.Driver,
			Tasks:   e.board.Store().Len(),
		}
	})
	hb.Start()
	defer hb.Stop()
	e.board.OnChange(func(tasks.Change) { hb.Beat() })

	maint, err := newMaintenance(e)
	if err != nil {
		return err
	}
	maint.Start(ctx)
	defer maint.Stop()

	// SIGHUP re-reads .env and config; only the log level applies live.
	reloader := config.NewReloader(cmd.String("config"), config.DotenvPath(), cfg)
	reloader.OnReload(func(c *config.Config) {
		if cmd.Bool("debug") {
			return
		}
		e.logger.SetLevel(logging.ParseLevel(c.Log.Level))
	})
	go reloader.WatchSignals(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for signal or error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		timeout := cfg.Gateway.ShutdownTimeout.Duration()
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
