package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"filippo.io/age"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/backup"
	"github.com/dohr-michael/taskboard/internal/config"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/secrets"
)

// NewBackupCommand returns the backup subcommand.
func NewBackupCommand() *cli.Command {
	return &cli.Command{
		Name:   "backup",
		Usage:  "Write a backup of the task list (encrypted when a recipient is configured)",
		Action: runBackup,
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List backups, newest first",
				Action:  runBackupList,
			},
		},
	}
}

func runBackup(ctx context.Context, cmd *cli.Command) error {
	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	info, err := e.writeBackup(events.SourceCLI)
	if errors.Is(err, backup.ErrEmpty) {
		fmt.Fprintln(writer(cmd), "No tasks to back up.")
		return nil
	}
	if err != nil {
		return err
	}

	kind := "plain"
	if info.Encrypted {
		kind = "encrypted"
	}
	fmt.Fprintf(writer(cmd), "Backed up %d tasks to %s (%s).\n", e.board.Store().Len(), info.Path, kind)
	return nil
}

func runBackupList(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	list, err := backup.List(cfg.Backup.Dir)
	if err != nil {
		return err
	}
	out := writer(cmd)
	if len(list) == 0 {
		fmt.Fprintln(out, "No backups found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tENCRYPTED\tSIZE\tFILE")
	for _, b := range list {
		fmt.Fprintf(w, "%s\t%t\t%d\t%s\n", b.Time.Local().Format("2006-01-02 15:04:05"), b.Encrypted, b.Size, b.Name())
	}
	return w.Flush()
}

// NewRestoreCommand returns the restore subcommand.
func NewRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Replace the task list with a backup",
		ArgsUsage: "<file|latest>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "age identity file for encrypted backups",
				Value: secrets.KeyPath(),
			},
		},
		Action: runRestore,
	}
}

func runRestore(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("usage: taskboard restore <file|latest>")
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	path := arg
	if arg == "latest" {
		list, err := backup.List(e.cfg.Backup.Dir)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("no backups in %s", e.cfg.Backup.Dir)
		}
		path = list[0].Path
	}

	var identity age.Identity
	if strings.HasSuffix(path, ".age") {
		id, err := secrets.LoadIdentity(cmd.String("key"))
		if err != nil {
			return fmt.Errorf("load backup key: %w", err)
		}
		identity = id
	}

	restored, err := backup.Read(path, identity)
	if err != nil {
		return err
	}
	snap := e.board.Reset(restored)

	fmt.Fprintf(writer(cmd), "Restored %d tasks from %s.\n", len(snap), path)
	return nil
}

// NewKeygenCommand returns the keygen subcommand.
func NewKeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Create the age key used to encrypt backups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Where to write the age identity",
				Value: secrets.KeyPath(),
			},
		},
		Action: runKeygen,
	}
}

func runKeygen(_ context.Context, cmd *cli.Command) error {
	keyPath := cmd.String("key")
	recipient, created, err := secrets.GenerateIdentity(keyPath)
	if err != nil {
		return err
	}
	if err := secrets.SetEntry(config.DotenvPath(), secrets.RecipientEnv, recipient); err != nil {
		return fmt.Errorf("update .env: %w", err)
	}

	out := writer(cmd)
	if created {
		fmt.Fprintf(out, "Created %s\n", keyPath)
	} else {
		fmt.Fprintf(out, "Using existing key %s\n", keyPath)
	}
	fmt.Fprintf(out, "Backups will be encrypted to %s\n", recipient)
	fmt.Fprintf(out, "Keep the key file safe: encrypted backups cannot be restored without it.\n")
	return nil
}
