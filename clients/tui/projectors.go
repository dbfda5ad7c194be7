package tui

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/taskboard/internal/events"
	ws "github.com/dohr-michael/taskboard/internal/gateway/ws"
)

// Project converts a gateway WS Frame into a typed tea.Msg.
// Returns nil for frames that don't map to a TUI message.
func Project(frame ws.Frame) tea.Msg {
	if frame.Event == "" {
		return nil
	}
	return projectPayload(events.EventType(frame.Event), frame.Payload)
}

// ProjectEvent converts a bus event into a typed tea.Msg.
func ProjectEvent(e events.Event) tea.Msg {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil
	}
	return projectPayload(e.Type, data)
}

func projectPayload(t events.EventType, data json.RawMessage) tea.Msg {
	switch t {
	case events.EventTasksSnapshot:
		var p events.TasksSnapshotPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil
		}
		return TasksLoadedMsg{Tasks: p.Tasks}
	case events.EventTaskCreated, events.EventTaskUpdated, events.EventTaskDeleted, events.EventTaskToggled:
		// All four payloads share the {task} shape.
		var p events.TaskCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil
		}
		return TaskEventMsg{Type: t, Task: p.Task}
	case events.EventStorageSaveFailed:
		var p events.StorageSaveFailedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil
		}
		return StorageErrorMsg{Err: p.Error, Count: p.Count}
	default:
		return nil
	}
}
