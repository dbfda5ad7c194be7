package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/events"
)

// NewResetCommand returns the reset subcommand.
func NewResetCommand() *cli.Command {
	return &cli.Command{
		Name:   "reset",
		Usage:  "Clear stored tasks and restore the seed list",
		Action: runReset,
	}
}

func runReset(ctx context.Context, cmd *cli.Command) error {
	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	snap := e.board.Reset(e.seed)

	fmt.Fprintf(writer(cmd), "Reset to %d seed tasks.\n", len(snap))
	return nil
}
