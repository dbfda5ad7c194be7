package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskboard",
		Usage: "A prioritized task manager with a web page, a terminal UI and a CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep tasks in memory only, ignoring the configured storage",
			},
		},
		Commands: []*cli.Command{
			NewInitCommand(),
			NewServeCommand(),
			NewTUICommand(),
			NewListCommand(),
			NewShowCommand(),
			NewAddCommand(),
			NewEditCommand(),
			NewToggleCommand(),
			NewRemoveCommand(),
			NewExportCommand(),
			NewResetCommand(),
			NewBackupCommand(),
			NewRestoreCommand(),
			NewKeygenCommand(),
			NewEventsCommand(),
			NewStatusCommand(),
		},
	}
}
