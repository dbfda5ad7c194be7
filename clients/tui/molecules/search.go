// Package molecules provides mid-level TUI components.
package molecules

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// QueryChangedMsg is sent whenever the search text changes.
type QueryChangedMsg struct {
	Query string
}

// SearchBox is a single-line search input.
type SearchBox struct {
	input textinput.Model
}

// NewSearchBox creates an unfocused search box.
func NewSearchBox() SearchBox {
	ti := textinput.New()
	ti.Placeholder = "Search tasks..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)
	return SearchBox{input: ti}
}

// Focus puts the caret in the box.
func (s *SearchBox) Focus() tea.Cmd { return s.input.Focus() }

// Blur releases focus.
func (s *SearchBox) Blur() { s.input.Blur() }

// Focused reports whether the box has focus.
func (s *SearchBox) Focused() bool { return s.input.Focused() }

// Value returns the current query.
func (s *SearchBox) Value() string { return s.input.Value() }

// Clear empties the box.
func (s *SearchBox) Clear() { s.input.SetValue("") }

// SetWidth sets the input width.
func (s *SearchBox) SetWidth(w int) { s.input.Width = w }

// Update forwards msg to the input and reports query changes.
func (s SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd) {
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if after := s.input.Value(); after != before {
		changed := func() tea.Msg { return QueryChangedMsg{Query: after} }
		return s, tea.Batch(cmd, changed)
	}
	return s, cmd
}

// View renders the box.
func (s SearchBox) View() string {
	return s.input.View()
}
