package organisms

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar displays connection state, counts, the current mode and key hints.
type StatusBar struct {
	target    string
	connected bool
	connErr   error
	shown     int
	total     int
	completed int
	query     string
	mode      Mode
	message   string
	width     int
	style     lipgloss.Style
}

// NewStatusBar creates a status bar for target ("local" or a gateway URL).
func NewStatusBar(target string, style lipgloss.Style) StatusBar {
	return StatusBar{target: target, connected: true, style: style}
}

// SetConnected updates the connection state.
func (p *StatusBar) SetConnected(connected bool, err error) {
	p.connected = connected
	p.connErr = err
}

// SetCounts updates the shown/total/completed counters.
func (p *StatusBar) SetCounts(shown, total, completed int) {
	p.shown, p.total, p.completed = shown, total, completed
}

// SetQuery records the active search filter.
func (p *StatusBar) SetQuery(q string) { p.query = q }

// SetMode updates the displayed interaction mode.
func (p *StatusBar) SetMode(mode Mode) { p.mode = mode }

// SetMessage shows a transient message (last error, last action).
func (p *StatusBar) SetMessage(msg string) { p.message = msg }

// SetWidth updates the rendering width.
func (p *StatusBar) SetWidth(w int) { p.width = w }

// Connected returns whether the backend is reachable.
func (p StatusBar) Connected() bool { return p.connected }

// ConnErr returns the last connection error.
func (p StatusBar) ConnErr() error { return p.connErr }

// Message returns the current transient message.
func (p StatusBar) Message() string { return p.message }

// View renders the status bar.
func (p StatusBar) View() string {
	conn := "connected"
	if !p.connected {
		conn = "disconnected"
		if p.connErr != nil {
			conn += ": " + p.connErr.Error()
		}
	}

	counts := fmt.Sprintf("%d/%d tasks, %d done", p.shown, p.total, p.completed)
	if p.query != "" {
		counts += fmt.Sprintf(" | filter %q", p.query)
	}

	msg := ""
	if p.message != "" {
		msg = " | " + p.message
	}

	bar := fmt.Sprintf(" %s | %s | %s | %s%s ", p.target, counts, p.mode, conn, msg)
	return p.style.Width(p.width).Render(bar)
}
