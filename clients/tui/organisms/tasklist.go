package organisms

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/taskboard/clients/tui/atoms"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// TaskListStyles is the palette of the task list.
type TaskListStyles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	Dimmed      lipgloss.Style
	Cursor      lipgloss.Style
	Row         lipgloss.Style
	Selected    lipgloss.Style
	High        lipgloss.Style
	Medium      lipgloss.Style
	Low         lipgloss.Style
	Empty       lipgloss.Style
}

// TaskList renders the visible rows and tracks the selected one.
type TaskList struct {
	items  []tasks.ListItem
	cursor int
	offset int
	width  int
	height int
	styles TaskListStyles
}

// NewTaskList creates an empty list.
func NewTaskList(styles TaskListStyles) TaskList {
	return TaskList{styles: styles, width: 80, height: 20}
}

// SetItems replaces the rows, keeping the selection on the same task id
// when it is still visible.
func (l *TaskList) SetItems(items []tasks.ListItem) {
	var selected int64 = -1
	if cur, ok := l.Selected(); ok {
		selected = cur.ID
	}

	l.items = items
	l.cursor = 0
	for i, it := range items {
		if it.Task.ID == selected {
			l.cursor = i
			break
		}
	}
	l.scroll()
}

// Items returns the current rows.
func (l TaskList) Items() []tasks.ListItem { return l.items }

// Len returns the number of rows.
func (l TaskList) Len() int { return len(l.items) }

// Cursor returns the index of the selected row.
func (l TaskList) Cursor() int { return l.cursor }

// Selected returns the task under the cursor.
func (l TaskList) Selected() (tasks.Task, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return tasks.Task{}, false
	}
	return l.items[l.cursor].Task, true
}

// MoveUp moves the selection one row up.
func (l *TaskList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.scroll()
}

// MoveDown moves the selection one row down.
func (l *TaskList) MoveDown() {
	if l.cursor < len(l.items)-1 {
		l.cursor++
	}
	l.scroll()
}

// Home selects the first row.
func (l *TaskList) Home() { l.cursor = 0; l.scroll() }

// End selects the last row.
func (l *TaskList) End() {
	l.cursor = max(len(l.items)-1, 0)
	l.scroll()
}

// SetSize sets the area the list renders into.
func (l *TaskList) SetSize(w, h int) {
	l.width = w
	l.height = max(h, rowHeight)
	l.scroll()
}

// Each row is title line, description line, blank separator.
const rowHeight = 3

func (l *TaskList) visibleRows() int {
	return max(l.height/rowHeight, 1)
}

func (l *TaskList) scroll() {
	rows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func (l TaskList) priorityStyle(p tasks.Priority) lipgloss.Style {
	switch p {
	case tasks.PriorityHigh:
		return l.styles.High
	case tasks.PriorityMedium:
		return l.styles.Medium
	default:
		return l.styles.Low
	}
}

// View renders the visible window of rows.
func (l TaskList) View() string {
	if len(l.items) == 0 {
		return l.styles.Empty.Render("No tasks.")
	}

	end := min(l.offset+l.visibleRows(), len(l.items))
	rows := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		rows = append(rows, l.renderRow(l.items[i], i == l.cursor))
	}
	return strings.Join(rows, "\n")
}

func (l TaskList) renderRow(it tasks.ListItem, selected bool) string {
	status := "[ ]"
	if it.Task.Completed {
		status = "[x]"
	}

	title := l.styles.Title.Render(it.Task.Title)
	desc := l.styles.Description.Render(it.Task.Description)
	if it.Dimmed {
		title = l.styles.Dimmed.Render(it.Task.Title)
		desc = l.styles.Dimmed.Render(it.Task.Description)
	}

	badge := atoms.Badge(it.PriorityLabel, l.priorityStyle(it.Task.Priority))
	head := status + " " + title + "  " + badge + "  " + atoms.StyledLabel(it.StatusLabel, l.styles.Dimmed)

	style := l.styles.Row
	if selected {
		style = l.styles.Selected
		head = l.styles.Cursor.Render(">") + " " + head
	} else {
		head = "  " + head
	}
	return style.Width(max(l.width-2, 10)).Render(head + "\n    " + desc) + "\n"
}
