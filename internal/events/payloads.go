package events

import (
	"encoding/json"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type TaskCreatedPayload struct {
	Task tasks.Task `json:"task"`
}

func (TaskCreatedPayload) EventType() EventType { return EventTaskCreated }

type TaskUpdatedPayload struct {
	Task tasks.Task `json:"task"`
}

func (TaskUpdatedPayload) EventType() EventType { return EventTaskUpdated }

type TaskDeletedPayload struct {
	Task tasks.Task `json:"task"`
}

func (TaskDeletedPayload) EventType() EventType { return EventTaskDeleted }

type TaskToggledPayload struct {
	Task tasks.Task `json:"task"`
}

func (TaskToggledPayload) EventType() EventType { return EventTaskToggled }

type TasksResetPayload struct {
	Count int `json:"count"`
}

func (TasksResetPayload) EventType() EventType { return EventTasksReset }

type TasksSnapshotPayload struct {
	Tasks []tasks.Task `json:"tasks"`
}

func (TasksSnapshotPayload) EventType() EventType { return EventTasksSnapshot }

type StorageSaveFailedPayload struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

func (StorageSaveFailedPayload) EventType() EventType { return EventStorageSaveFailed }

type BackupCreatedPayload struct {
	Path      string `json:"path"`
	Count     int    `json:"count"`
	Encrypted bool   `json:"encrypted"`
}

func (BackupCreatedPayload) EventType() EventType { return EventBackupCreated }

// NewTypedEvent builds an event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return NewEvent(payload.EventType(), source, toMap(payload))
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// ExtractPayload decodes an event's payload into T.
func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	if e.Type != result.EventType() {
		return result, false
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

// FromChange maps a board mutation to its typed event followed by a
// snapshot event.
func FromChange(source EventSource, c tasks.Change) []Event {
	var first EventPayload
	switch c.Op {
	case tasks.OpCreated:
		first = TaskCreatedPayload{Task: c.Task}
	case tasks.OpUpdated:
		first = TaskUpdatedPayload{Task: c.Task}
	case tasks.OpDeleted:
		first = TaskDeletedPayload{Task: c.Task}
	case tasks.OpToggled:
		first = TaskToggledPayload{Task: c.Task}
	case tasks.OpReset:
		first = TasksResetPayload{Count: len(c.Snapshot)}
	}

	snapshot := c.Snapshot
	if snapshot == nil {
		snapshot = []tasks.Task{}
	}

	var out []Event
	if first != nil {
		out = append(out, NewTypedEvent(source, first))
	}
	return append(out, NewTypedEvent(source, TasksSnapshotPayload{Tasks: snapshot}))
}

// Bridge publishes every change made through board on bus.
func Bridge(bus *Bus, board *tasks.Board, source EventSource) {
	board.OnChange(func(c tasks.Change) {
		for _, e := range FromChange(source, c) {
			bus.Publish(e)
		}
	})
}
