package ws

import (
	"encoding/json"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

// FrameType represents the type of WebSocket frame.
type FrameType string

const (
	FrameTypeRequest  FrameType = "req"
	FrameTypeResponse FrameType = "res"
	FrameTypeEvent    FrameType = "event"
)

// Method represents a WebSocket request method.
type Method string

const (
	MethodListTasks  Method = "list_tasks"
	MethodCreateTask Method = "create_task"
	MethodUpdateTask Method = "update_task"
	MethodDeleteTask Method = "delete_task"
	MethodToggleTask Method = "toggle_task"
)

// Frame is the WebSocket protocol envelope.
type Frame struct {
	Type    FrameType       `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
}

// ListTasksParams are the params of list_tasks.
type ListTasksParams struct {
	Query string `json:"query,omitempty"`
}

// CreateTaskParams are the params of create_task.
type CreateTaskParams struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    tasks.Priority `json:"priority,omitempty"`
}

// UpdateTaskParams are the params of update_task.
type UpdateTaskParams struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    tasks.Priority `json:"priority,omitempty"`
}

// TaskIDParams are the params of delete_task and toggle_task.
type TaskIDParams struct {
	ID int64 `json:"id"`
}

// TasksResult is the payload of every successful task response: the task
// acted on (if any) and the resulting priority-ordered list.
type TasksResult struct {
	Task  *tasks.Task  `json:"task,omitempty"`
	Tasks []tasks.Task `json:"tasks"`
}

// MarshalFrame serializes a Frame to JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// UnmarshalFrame deserializes JSON bytes into a Frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}

// NewRequestFrame creates a request Frame.
func NewRequestFrame(id string, method Method, params any) (Frame, error) {
	f := Frame{
		Type:   FrameTypeRequest,
		ID:     id,
		Method: string(method),
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return Frame{}, err
		}
		f.Params = data
	}
	return f, nil
}

// NewEventFrame creates a Frame for broadcasting an event.
func NewEventFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: data,
	}, nil
}

// NewResponseFrame creates a response Frame.
func NewResponseFrame(id string, ok bool, payload any, errMsg string) (Frame, error) {
	f := Frame{
		Type:  FrameTypeResponse,
		ID:    id,
		OK:    &ok,
		Error: errMsg,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		f.Payload = data
	}
	return f, nil
}
