package organisms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

// FormSubmitMsg is sent when the user submits a complete form.
type FormSubmitMsg struct {
	Fields tasks.Fields
}

// FormCancelledMsg is sent when the user dismisses the form.
type FormCancelledMsg struct{}

const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldCount
)

// FormStyles is the palette of the task form.
type FormStyles struct {
	Box     lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// TaskForm is the add/edit modal. It edits the fields of a form opened on
// the board and hands them back on submit.
type TaskForm struct {
	mode        tasks.FormMode
	priority    tasks.Priority
	title       textinput.Model
	description textarea.Model
	focus       int
	err         string
	width       int
	styles      FormStyles
}

// NewTaskForm creates a closed form.
func NewTaskForm(styles FormStyles) TaskForm {
	ti := textinput.New()
	ti.Placeholder = "Task Title"
	ti.CharLimit = 200
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)

	ta := textarea.New()
	ta.Placeholder = "Task Description"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Cursor.SetMode(cursor.CursorStatic)

	return TaskForm{
		priority:    tasks.PriorityMedium,
		title:       ti,
		description: ta,
		styles:      styles,
		width:       50,
	}
}

// Active reports whether the modal is open.
func (f TaskForm) Active() bool { return f.mode != tasks.FormClosed }

// Mode returns create, edit or closed.
func (f TaskForm) Mode() tasks.FormMode { return f.mode }

// Fields returns the values currently entered.
func (f TaskForm) Fields() tasks.Fields {
	return tasks.Fields{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Priority:    f.priority,
	}
}

// Err returns the validation message shown in the modal.
func (f TaskForm) Err() string { return f.err }

// SetWidth sets the modal content width.
func (f *TaskForm) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	f.width = w
	f.title.Width = w - 2
	f.description.SetWidth(w)
}

// Open shows the modal in mode with fields preloaded.
func (f *TaskForm) Open(mode tasks.FormMode, fields tasks.Fields) tea.Cmd {
	if mode == tasks.FormClosed {
		f.Close()
		return nil
	}
	f.mode = mode
	f.priority = fields.Priority
	if !f.priority.Valid() {
		f.priority = tasks.PriorityMedium
	}
	f.title.SetValue(fields.Title)
	f.title.CursorEnd()
	f.description.SetValue(fields.Description)
	f.err = ""
	return f.focusField(fieldTitle)
}

// Close dismisses the form without emitting anything.
func (f *TaskForm) Close() {
	f.mode = tasks.FormClosed
	f.priority = tasks.PriorityMedium
	f.title.Blur()
	f.description.Blur()
	f.err = ""
}

func (f *TaskForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	}
	return nil
}

// Update handles keys while the form is open.
func (f TaskForm) Update(msg tea.Msg) (TaskForm, tea.Cmd) {
	if !f.Active() {
		return f, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	switch key.String() {
	case "esc":
		f.Close()
		return f, func() tea.Msg { return FormCancelledMsg{} }
	case "tab", "down":
		if key.String() == "down" && f.focus == fieldDescription {
			break
		}
		return f, f.focusField(f.focus + 1)
	case "shift+tab", "up":
		if key.String() == "up" && f.focus == fieldDescription {
			break
		}
		return f, f.focusField(f.focus - 1)
	case "ctrl+s":
		return f.submit()
	case "enter":
		switch f.focus {
		case fieldTitle:
			return f, f.focusField(fieldDescription)
		case fieldPriority:
			return f.submit()
		}
	}

	if f.focus == fieldPriority {
		switch key.String() {
		case "left", "right", " ", "h", "l", "p":
			f.cyclePriority(key.String() == "left" || key.String() == "h")
		}
		return f, nil
	}

	return f.updateFocused(msg)
}

func (f *TaskForm) cyclePriority(backwards bool) {
	p := f.priority
	if backwards {
		// Next cycles forward through three values; twice is one step back.
		p = p.Next().Next()
	} else {
		p = p.Next()
	}
	f.priority = p
}

func (f TaskForm) updateFocused(msg tea.Msg) (TaskForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	}
	return f, cmd
}

func (f TaskForm) submit() (TaskForm, tea.Cmd) {
	fields := f.Fields()
	if missing := fields.Missing(); len(missing) > 0 {
		f.err = "required: " + strings.Join(missing, ", ")
		return f, nil
	}

	out := FormSubmitMsg{Fields: fields}
	f.Close()
	return f, func() tea.Msg { return out }
}

// View renders the modal, or nothing when closed.
func (f TaskForm) View() string {
	if !f.Active() {
		return ""
	}

	heading := "Add New Task"
	submit := "Add Task"
	if f.mode == tasks.FormEdit {
		heading = "Edit Task"
		submit = "Update Task"
	}

	label := func(i int, text string) string {
		if f.focus == i {
			return f.styles.Focused.Render("> " + text)
		}
		return f.styles.Label.Render("  " + text)
	}

	var priorities []string
	cur := f.priority
	for _, p := range tasks.Priorities {
		name := p.Label()
		if p == cur {
			name = f.styles.Focused.Render("(" + name + ")")
		} else {
			name = f.styles.Muted.Render(" " + name + " ")
		}
		priorities = append(priorities, name)
	}

	var b strings.Builder
	b.WriteString(f.styles.Heading.Render(heading) + "\n\n")
	b.WriteString(label(fieldTitle, "Title") + "\n" + f.title.View() + "\n\n")
	b.WriteString(label(fieldDescription, "Description") + "\n" + f.description.View() + "\n\n")
	b.WriteString(label(fieldPriority, "Priority") + "  " + strings.Join(priorities, " ") + "\n")
	if f.err != "" {
		b.WriteString("\n" + f.styles.Error.Render(f.err) + "\n")
	}
	b.WriteString("\n" + f.styles.Muted.Render(fmt.Sprintf("ctrl+s %s · tab next field · esc cancel", strings.ToLower(submit))))

	return f.styles.Box.Width(f.width + 2).Render(b.String())
}
