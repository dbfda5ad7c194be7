package export

import (
	"fmt"
	"strings"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "#", `\#`, "|", `\|`, "<", `\<`,
)

func mdEscape(s string) string { return mdEscaper.Replace(s) }

// Markdown renders list as a checklist, one item per task, in the order given.
func Markdown(list []tasks.Task) string {
	var b strings.Builder
	b.WriteString("# Tasks\n\n")
	if len(list) == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}
	for _, t := range list {
		box := " "
		if t.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] **%s** `%s`\n", box, mdEscape(t.Title), t.Priority.Label())
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintf(&b, "  %s\n", mdEscape(line))
		}
	}
	return b.String()
}

// Card renders a single task as a markdown section.
func Card(t tasks.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", mdEscape(t.Title))
	b.WriteString("| Priority | Status |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", t.Priority.Label(), t.StatusLabel())
	fmt.Fprintf(&b, "%s\n\n", mdEscape(t.Description))
	fmt.Fprintf(&b, "_Task #%d_\n", t.ID)
	return b.String()
}
