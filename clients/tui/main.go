package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/taskboard/clients/tui/atoms"
	"github.com/dohr-michael/taskboard/clients/tui/molecules"
	"github.com/dohr-michael/taskboard/clients/tui/organisms"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// MainModel is the root bubbletea model for the taskboard TUI.
type MainModel struct {
	ctx     context.Context
	backend Backend
	mode    organisms.Mode
	width   int
	height  int

	page   *tasks.Board
	search molecules.SearchBox
	list   organisms.TaskList
	form   organisms.TaskForm
	status organisms.StatusBar
}

// NewMainModel creates the root model over backend.
func NewMainModel(ctx context.Context, backend Backend) MainModel {
	form := organisms.NewTaskForm(organisms.FormStyles{
		Box:     ModalStyle,
		Heading: TitleStyle,
		Label:   MutedStyle,
		Focused: TitleStyle,
		Error:   ErrorStyle,
		Muted:   MutedStyle,
	})

	return MainModel{
		ctx:     ctx,
		backend: backend,
		page:    backend.Page(),
		mode:    organisms.ModeBrowse,
		search:  molecules.NewSearchBox(),
		list:    organisms.NewTaskList(ListStyles()),
		form:    form,
		status:  organisms.NewStatusBar(backend.Name(), StatusBarStyle),
	}
}

// Init loads the task list.
func (m MainModel) Init() tea.Cmd {
	return m.load()
}

// Mode returns the current interaction mode.
func (m MainModel) Mode() organisms.Mode { return m.mode }

// Items returns the visible rows.
func (m MainModel) Items() []tasks.ListItem { return m.list.Items() }

// Selected returns the task under the cursor.
func (m MainModel) Selected() (tasks.Task, bool) { return m.list.Selected() }

// Query returns the active search text.
func (m MainModel) Query() string { return m.search.Value() }

// Status returns the status bar state.
func (m MainModel) Status() organisms.StatusBar { return m.status }

// Form returns the add/edit modal state.
func (m MainModel) Form() organisms.TaskForm { return m.form }

// Update processes all incoming messages.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.SetWidth(max(m.width-4, 10))
		m.list.SetSize(m.width, m.height-5) // title, search, blank, help, status
		m.form.SetWidth(min(m.width-8, 60))
		m.status.SetWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case TasksLoadedMsg:
		m.backend.Sync(msg.Tasks)
		m.status.SetConnected(true, nil)
		m.refresh()
		return m, nil

	case TaskEventMsg:
		m.status.SetMessage(describeEvent(msg))
		return m, nil

	case ActionDoneMsg:
		if msg.Err != nil {
			if m.mode != organisms.ModeForm {
				m.page.CancelForm()
			}
			m.status.SetMessage(fmt.Sprintf("%s failed: %v", msg.Action, msg.Err))
			return m, nil
		}
		m.status.SetMessage(fmt.Sprintf("%s %q", msg.Action, msg.Task.Title))
		return m, m.load()

	case StorageErrorMsg:
		m.status.SetMessage("not saved: " + msg.Err)
		return m, nil

	case ConnectedMsg:
		m.status.SetConnected(true, nil)
		return m, m.load()

	case DisconnectedMsg:
		m.status.SetConnected(false, msg.Err)
		return m, nil

	case organisms.FormSubmitMsg:
		m.page.SetFormFields(msg.Fields)
		m.setMode(organisms.ModeBrowse)
		return m, m.submit()

	case organisms.FormCancelledMsg:
		m.page.CancelForm()
		m.setMode(organisms.ModeBrowse)
		return m, nil

	case molecules.QueryChangedMsg:
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case organisms.ModeForm:
		m.form, cmd = m.form.Update(msg)
	case organisms.ModeSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m *MainModel) setMode(mode organisms.Mode) {
	m.mode = mode
	m.status.SetMode(mode)
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case organisms.ModeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case organisms.ModeSearch:
		switch msg.String() {
		case "esc":
			m.search.Clear()
			m.search.Blur()
			m.setMode(organisms.ModeBrowse)
			m.refresh()
			return m, nil
		case "enter":
			m.search.Blur()
			m.setMode(organisms.ModeBrowse)
			return m, nil
		case "up":
			m.list.MoveUp()
			return m, nil
		case "down":
			m.list.MoveDown()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.setMode(organisms.ModeSearch)
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.Clear()
			m.refresh()
		}
		return m, nil
	case "a":
		m.page.OpenAdd()
		return m, m.openForm()
	case "e", "enter":
		t, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		if err := m.page.Dispatch(tasks.Intent{Kind: tasks.IntentEdit, ID: t.ID}); err != nil {
			m.status.SetMessage(fmt.Sprintf("edit failed: %v", err))
			return m, nil
		}
		return m, m.openForm()
	case " ", "x":
		if t, ok := m.list.Selected(); ok {
			return m, m.toggle(t.ID)
		}
	case "d", "delete":
		if t, ok := m.list.Selected(); ok {
			return m, m.remove(t.ID)
		}
	case "up", "k":
		m.list.MoveUp()
	case "down", "j":
		m.list.MoveDown()
	case "home", "g":
		m.list.Home()
	case "end", "G":
		m.list.End()
	case "r":
		return m, m.load()
	}
	return m, nil
}

// openForm shows the modal for the form the page just opened.
func (m *MainModel) openForm() tea.Cmd {
	mode, fields := m.page.Form()
	m.setMode(organisms.ModeForm)
	return m.form.Open(mode, fields)
}

// refresh recomputes the visible rows from the page and the search box.
func (m *MainModel) refresh() {
	query := m.search.Value()
	m.page.SetQuery(query)
	m.list.SetItems(m.page.Visible())

	all := m.page.Store().Snapshot()
	completed := 0
	for _, t := range all {
		if t.Completed {
			completed++
		}
	}
	m.status.SetCounts(m.list.Len(), len(all), completed)
	m.status.SetQuery(query)
}

func (m MainModel) load() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		list, err := backend.Tasks(ctx)
		if err != nil {
			return DisconnectedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: list}
	}
}

func (m MainModel) act(action string, fn func(ctx context.Context) (tasks.Task, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		t, err := fn(ctx)
		return ActionDoneMsg{Action: action, Task: t, Err: err}
	}
}

func (m MainModel) submit() tea.Cmd {
	action := "created"
	if mode, _ := m.page.Form(); mode == tasks.FormEdit {
		action = "updated"
	}
	return m.act(action, m.backend.Submit)
}

func (m MainModel) toggle(id int64) tea.Cmd {
	backend := m.backend
	return m.act("toggled", func(ctx context.Context) (tasks.Task, error) {
		return backend.Toggle(ctx, id)
	})
}

func (m MainModel) remove(id int64) tea.Cmd {
	backend := m.backend
	return m.act("deleted", func(ctx context.Context) (tasks.Task, error) {
		return backend.Delete(ctx, id)
	})
}

func describeEvent(msg TaskEventMsg) string {
	verb := strings.TrimPrefix(string(msg.Type), "task.")
	if msg.Type == events.EventTaskToggled {
		verb = "marked " + strings.ToLower(msg.Task.StatusLabel())
	}
	return fmt.Sprintf("%s %q", verb, msg.Task.Title)
}

// View renders the full TUI layout.
func (m MainModel) View() string {
	header := TitleStyle.Render("Task Manager")

	body := m.list.View()
	if m.form.Active() {
		body = lipgloss.Place(max(m.width, 1), max(m.height-5, 1), lipgloss.Center, lipgloss.Center, m.form.View())
	}

	return strings.Join([]string{
		header,
		m.search.View(),
		body,
		m.help(),
		m.status.View(),
	}, "\n")
}

func (m MainModel) help() string {
	var hints []string
	switch m.mode {
	case organisms.ModeSearch:
		hints = []string{
			atoms.KeyHint("enter", "apply", TitleStyle),
			atoms.KeyHint("esc", "clear", TitleStyle),
		}
	case organisms.ModeForm:
		return ""
	default:
		hints = []string{
			atoms.KeyHint("/", "search", TitleStyle),
			atoms.KeyHint("a", "add", TitleStyle),
			atoms.KeyHint("e", "edit", TitleStyle),
			atoms.KeyHint("space", "toggle", TitleStyle),
			atoms.KeyHint("d", "delete", TitleStyle),
			atoms.KeyHint("q", "quit", TitleStyle),
		}
	}
	return MutedStyle.Render(strings.Join(hints, "  "))
}
