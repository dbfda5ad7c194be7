package ws

import (
	"encoding/json"
	"testing"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

func TestMarshalUnmarshal_RequestFrame(t *testing.T) {
	orig, err := NewRequestFrame("req-1", MethodCreateTask, CreateTaskParams{Title: "Study", Description: "ch. 3"})
	if err != nil {
		t.Fatalf("NewRequestFrame: %v", err)
	}

	data, err := MarshalFrame(orig)
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}

	got, err := UnmarshalFrame(data)
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}

	if got.Type != FrameTypeRequest {
		t.Fatalf("expected type %q, got %q", FrameTypeRequest, got.Type)
	}
	if got.ID != "req-1" {
		t.Fatalf("expected id %q, got %q", "req-1", got.ID)
	}
	if got.Method != string(MethodCreateTask) {
		t.Fatalf("expected method %q, got %q", MethodCreateTask, got.Method)
	}

	var p CreateTaskParams
	if err := json.Unmarshal(got.Params, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if p.Title != "Study" {
		t.Fatalf("expected params.title %q, got %q", "Study", p.Title)
	}
}

func TestNewRequestFrame_NoParams(t *testing.T) {
	f, err := NewRequestFrame("req-2", MethodListTasks, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Params != nil {
		t.Errorf("expected no params, got %s", f.Params)
	}
}

func TestNewResponseFrame(t *testing.T) {
	f, err := NewResponseFrame("req-1", true, TasksResult{Tasks: []tasks.Task{}}, "")
	if err != nil {
		t.Fatalf("NewResponseFrame: %v", err)
	}
	if f.Type != FrameTypeResponse {
		t.Fatalf("expected type %q, got %q", FrameTypeResponse, f.Type)
	}
	if f.OK == nil || !*f.OK {
		t.Fatal("expected ok=true")
	}
	if string(f.Payload) != `{"tasks":[]}` {
		t.Errorf("unexpected payload %s", f.Payload)
	}
}

func TestNewResponseFrame_Error(t *testing.T) {
	f, err := NewResponseFrame("req-1", false, nil, "task not found")
	if err != nil {
		t.Fatalf("NewResponseFrame: %v", err)
	}
	if f.OK == nil || *f.OK {
		t.Fatal("expected ok=false")
	}
	if f.Error != "task not found" {
		t.Fatalf("expected error %q, got %q", "task not found", f.Error)
	}
	if f.Payload != nil {
		t.Fatalf("expected nil payload, got %s", f.Payload)
	}
}

func TestNewEventFrame(t *testing.T) {
	f, err := NewEventFrame("tasks.snapshot", map[string]any{"tasks": []any{}})
	if err != nil {
		t.Fatalf("NewEventFrame: %v", err)
	}
	if f.Type != FrameTypeEvent {
		t.Fatalf("expected type %q, got %q", FrameTypeEvent, f.Type)
	}
	if f.Event != "tasks.snapshot" {
		t.Fatalf("expected event %q, got %q", "tasks.snapshot", f.Event)
	}
}

func TestUnmarshalFrame_InvalidJSON(t *testing.T) {
	if _, err := UnmarshalFrame([]byte(`{invalid`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestOmitEmpty(t *testing.T) {
	data, err := MarshalFrame(Frame{Type: FrameTypeEvent, Event: "ping"})
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "method", "params", "ok", "payload", "error"} {
		if _, exists := raw[key]; exists {
			t.Errorf("expected key %q to be omitted", key)
		}
	}
}
