package tui

import (
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// TasksLoadedMsg carries the full task collection, in store order.
type TasksLoadedMsg struct {
	Tasks []tasks.Task
}

// TaskEventMsg reports a single mutation seen on the backend, from this
// client or another one.
type TaskEventMsg struct {
	Type events.EventType
	Task tasks.Task
}

// ActionDoneMsg is returned when a create/edit/toggle/delete call finishes.
type ActionDoneMsg struct {
	Action string
	Task   tasks.Task
	Err    error
}

// ConnectedMsg signals the backend is reachable.
type ConnectedMsg struct{}

// DisconnectedMsg signals a lost backend connection.
type DisconnectedMsg struct {
	Err error
}

// StorageErrorMsg reports a snapshot write that did not reach storage.
type StorageErrorMsg struct {
	Err   string
	Count int
}
