package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/export"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// NewListCommand returns the list subcommand.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tasks, highest priority first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only tasks whose title or description contains this text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of a table",
			},
		},
		Action: runList,
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	items := e.board.VisibleFor(cmd.String("query"))
	out := writer(cmd)

	if cmd.Bool("json") {
		list := make([]tasks.Task, len(items))
		for i, it := range items {
			list[i] = it.Task
		}
		return export.Write(out, list, export.FormatJSON)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tSTATUS\tTITLE\tDESCRIPTION")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			it.Task.ID,
			it.PriorityLabel,
			it.StatusLabel,
			it.Task.Title,
			it.Task.Description,
		)
	}
	return w.Flush()
}

func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "Task title",
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
			Usage:   "Task description",
		},
		&cli.StringFlag{
			Name:    "priority",
			Aliases: []string{"p"},
			Usage:   "high, medium or low",
			Value:   string(tasks.PriorityMedium),
		},
	}
}

// NewAddCommand returns the add subcommand.
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:   "add",
		Usage:  "Add a task",
		Flags:  fieldFlags(),
		Action: runAdd,
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	priority, err := tasks.ParsePriority(cmd.String("priority"))
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := e.board.Create(tasks.Fields{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		Priority:    priority,
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	fmt.Fprintf(writer(cmd), "Created task %d: %s [%s]\n", t.ID, t.Title, t.Priority.Label())
	return nil
}

// NewEditCommand returns the edit subcommand.
func NewEditCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change a task's title, description or priority",
		ArgsUsage: "<id>",
		Flags:     fieldFlags(),
		Action:    runEdit,
	}
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	cur, ok := e.board.Store().Get(id)
	if !ok {
		return fmt.Errorf("edit task: %w: %d", tasks.ErrNotFound, id)
	}

	// Unset flags keep the current values.
	fields := tasks.Fields{Title: cur.Title, Description: cur.Description, Priority: cur.Priority}
	if cmd.IsSet("title") {
		fields.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		fields.Description = cmd.String("description")
	}
	if cmd.IsSet("priority") {
		if fields.Priority, err = tasks.ParsePriority(cmd.String("priority")); err != nil {
			return err
		}
	}

	t, err := e.board.Edit(id, fields)
	if err != nil {
		return fmt.Errorf("edit task: %w", err)
	}

	fmt.Fprintf(writer(cmd), "Updated task %d: %s [%s]\n", t.ID, t.Title, t.Priority.Label())
	return nil
}

// NewToggleCommand returns the toggle subcommand.
func NewToggleCommand() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Aliases:   []string{"done"},
		Usage:     "Flip a task between incomplete and completed",
		ArgsUsage: "<id>",
		Action:    runToggle,
	}
}

func runToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.board.Dispatch(tasks.Intent{Kind: tasks.IntentToggle, ID: id}); err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}

	t, _ := e.board.Store().Get(id)
	fmt.Fprintf(writer(cmd), "Task %d: %s\n", t.ID, t.StatusLabel())
	return nil
}

// NewRemoveCommand returns the rm subcommand.
func NewRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		ArgsUsage: "<id>",
		Action:    runRemove,
	}
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := taskIDArg(cmd)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, cmd, events.SourceCLI)
	if err != nil {
		return err
	}
	defer e.Close()

	t, _ := e.board.Store().Get(id)
	if err := e.board.Dispatch(tasks.Intent{Kind: tasks.IntentDelete, ID: id}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	fmt.Fprintf(writer(cmd), "Deleted task %d: %s\n", t.ID, t.Title)
	return nil
}
