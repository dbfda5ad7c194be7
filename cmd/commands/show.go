package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/export"
)

// NewShowCommand returns the show subcommand.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one task as a formatted card",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the markdown source instead of rendering it",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Wrap width",
				Value: 80,
			},
		},
		Action: runShow,
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	t, ok := e.board.Store().Get(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}

	card := export.Card(t)
	out := writer(cmd)
	if cmd.Bool("raw") {
		_, err := io.WriteString(out, card)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamourStyle(out),
		glamour.WithWordWrap(cmd.Int("width")),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := r.Render(card)
	if err != nil {
		return fmt.Errorf("render task: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// glamourStyle picks colors only when writing to a terminal.
func glamourStyle(w io.Writer) glamour.TermRendererOption {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle("notty")
}
