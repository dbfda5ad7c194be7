package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/taskboard/clients/tui"
	wsclient "github.com/dohr-michael/taskboard/clients/ws"
	"github.com/dohr-michael/taskboard/internal/config"
	"github.com/dohr-michael/taskboard/internal/events"
)

// NewTUICommand returns the tui subcommand.
func NewTUICommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "remote",
				Aliases: []string{"r"},
				Usage:   "Gateway WebSocket URL (e.g. ws://127.0.0.1:18421/api/ws); local storage when empty",
			},
		},
		Action: runTUI,
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal")
	}

	if url := cmd.String("remote"); url != "" {
		_, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		closeLog := quietLogs(cmd, logger)
		defer closeLog()

		client, err := wsclient.Dial(ctx, url)
		if err != nil {
			return fmt.Errorf("connect to gateway: %w", err)
		}
		defer client.Close()
		return tui.Run(ctx, tui.NewRemoteBackend(url, client))
	}

	e, err := openEnv(ctx, cmd, events.SourceTUI)
	if err != nil {
		return err
	}
	defer e.Close()

	closeLog := quietLogs(cmd, e.logger)
	defer closeLog()

	return tui.Run(ctx, tui.NewLocalBackend(e.board, e.bus))
}

// quietLogs moves log output off the terminal while the TUI owns it: to
// tui.log with --debug, nowhere otherwise.
func quietLogs(cmd *cli.Command, logger interface{ SetOutput(io.Writer) }) func() {
	if !cmd.Bool("debug") {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(errWriter(cmd)) }
	}

	path := filepath.Join(config.TaskboardPath(), "tui.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(errWriter(cmd)) }
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(errWriter(cmd))
		_ = f.Close()
	}
}
