package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/config"
)

// NewInitCommand returns the init subcommand.
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Initialize the taskboard home directory (~/.taskboard)",
		Action: runInit,
	}
}

func runInit(_ context.Context, cmd *cli.Command) error {
	out := writer(cmd)
	root := config.TaskboardPath()
	created := false

	// Ensure directories exist.
	dirs := []string{
		root,
		filepath.Join(root, "data"),
		filepath.Join(root, "logs"),
		filepath.Join(root, "backups"),
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", d, err)
			}
			fmt.Fprintf(out, "  Created %s\n", d)
			created = true
		}
	}

	// Write default config if missing.
	configPath := config.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(out, "  Created %s\n", configPath)
		created = true
	}

	// Write default .env if missing.
	dotenvPath := config.DotenvPath()
	if _, err := os.Stat(dotenvPath); err != nil {
		if err := os.WriteFile(dotenvPath, []byte(defaultDotenv), 0o600); err != nil {
			return fmt.Errorf("write .env: %w", err)
		}
		fmt.Fprintf(out, "  Created %s\n", dotenvPath)
		created = true
	}

	if !created {
		fmt.Fprintf(out, "%s is already set up. Nothing to do.\n", root)
		return nil
	}

	fmt.Fprint(out, initMessage(root))
	return nil
}

const defaultConfig = `{
	// taskboard configuration (JSONC: comments and trailing commas allowed)

	"gateway": {
		"host": "127.0.0.1",
		"port": 18421,
		"shutdown_timeout": "5s"
	},

	// driver: dir (one JSON file per key), sqlite, mysql or memory
	"storage": {
		"driver": "dir"

		// "driver": "mysql",
		// "dsn": "${{ .Env.TASKBOARD_MYSQL_DSN }}"
	},

	"events": {
		"buffer_size": 1024,
		"retention_days": 30
	},

	// Backups run inside "serve" on this cron schedule ("" disables).
	// Run "taskboard keygen" to encrypt them with age.
	"backup": {
		"schedule": "@daily",
		"keep": 7
	},

	"log": {
		"level": "${{ .Env.TASKBOARD_LOG_LEVEL }}",
		"format": "text"
	}

	// YAML file with a "tasks:" list replacing the built-in seed
	// "seed_file": "~/.taskboard/seed.yaml"
}
`

const defaultDotenv = `# taskboard environment variables
# This file is loaded automatically. Existing env vars are never overridden.

TASKBOARD_LOG_LEVEL=info
# TASKBOARD_MYSQL_DSN=user:pass@tcp(127.0.0.1:3306)/taskboard
# TASKBOARD_BACKUP_RECIPIENT=age1...
`

func initMessage(root string) string {
	return fmt.Sprintf(`
  taskboard home set up at %s

  Next steps:
    1. Tweak %s/config.jsonc if you like
    2. Run: taskboard serve   (web page on http://127.0.0.1:18421)
    3. Or:  taskboard tui
`, root, root)
}
