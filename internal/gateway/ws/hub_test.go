package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// boardHandler is a minimal TaskHandler over a board.
type boardHandler struct{ board *tasks.Board }

func (h boardHandler) List(q string) []tasks.Task {
	var out []tasks.Task
	for _, it := range h.board.VisibleFor(q) {
		out = append(out, it.Task)
	}
	return out
}

func (h boardHandler) Create(f tasks.Fields) (tasks.Task, error) { return h.board.Create(f) }

func (h boardHandler) Edit(id int64, f tasks.Fields) (tasks.Task, error) {
	return h.board.Edit(id, f)
}

func (h boardHandler) Toggle(id int64) (tasks.Task, error) {
	if err := h.board.Dispatch(tasks.Intent{Kind: tasks.IntentToggle, ID: id}); err != nil {
		return tasks.Task{}, err
	}
	t, _ := h.board.Store().Get(id)
	return t, nil
}

func (h boardHandler) Delete(id int64) (tasks.Task, error) {
	t, _ := h.board.Store().Get(id)
	return t, h.board.Dispatch(tasks.Intent{Kind: tasks.IntentDelete, ID: id})
}

func newTestHub(t *testing.T) (*Hub, *events.Bus, *tasks.Board) {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	board := tasks.NewBoard(tasks.NewStore(tasks.Seed(), nil), tasks.NewCounter(100))
	events.Bridge(bus, board, events.SourceGateway)

	hub := NewHub(bus, boardHandler{board})
	t.Cleanup(hub.Close)
	return hub, bus, board
}

func request(t *testing.T, method Method, params any) Frame {
	t.Helper()
	f, err := NewRequestFrame("r1", method, params)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func decodeResult(t *testing.T, f Frame) TasksResult {
	t.Helper()
	if f.OK == nil || !*f.OK {
		t.Fatalf("expected ok response, got error %q", f.Error)
	}
	var res TasksResult
	if err := json.Unmarshal(f.Payload, &res); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return res
}

func TestHandle_ListTasks(t *testing.T) {
	hub, _, _ := newTestHub(t)

	res := decodeResult(t, hub.Handle(request(t, MethodListTasks, nil)))
	if len(res.Tasks) != 3 || res.Tasks[0].ID != 2 {
		t.Errorf("expected seed sorted high first, got %+v", res.Tasks)
	}

	res = decodeResult(t, hub.Handle(request(t, MethodListTasks, ListTasksParams{Query: "walk"})))
	if len(res.Tasks) != 1 || res.Tasks[0].ID != 3 {
		t.Errorf("expected only the walk, got %+v", res.Tasks)
	}
}

func TestHandle_CreateUpdateToggleDelete(t *testing.T) {
	hub, _, board := newTestHub(t)

	res := decodeResult(t, hub.Handle(request(t, MethodCreateTask, CreateTaskParams{Title: "Read", Description: "book"})))
	if res.Task == nil || res.Task.ID != 101 || res.Task.Priority != tasks.PriorityMedium {
		t.Fatalf("unexpected created task: %+v", res.Task)
	}
	if len(res.Tasks) != 4 {
		t.Errorf("expected 4 tasks in snapshot, got %d", len(res.Tasks))
	}

	res = decodeResult(t, hub.Handle(request(t, MethodUpdateTask, UpdateTaskParams{ID: 101, Title: "Read more", Description: "book", Priority: tasks.PriorityHigh})))
	if res.Task.Title != "Read more" || res.Task.ID != 101 {
		t.Errorf("unexpected updated task: %+v", res.Task)
	}

	res = decodeResult(t, hub.Handle(request(t, MethodToggleTask, TaskIDParams{ID: 101})))
	if !res.Task.Completed {
		t.Error("expected task completed after toggle")
	}

	decodeResult(t, hub.Handle(request(t, MethodDeleteTask, TaskIDParams{ID: 101})))
	if _, ok := board.Store().Get(101); ok {
		t.Error("expected task deleted")
	}
}

func TestHandle_Errors(t *testing.T) {
	hub, _, _ := newTestHub(t)

	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{"unknown method", request(t, Method("explode"), nil), "unknown method"},
		{"missing title", request(t, MethodCreateTask, CreateTaskParams{Description: "x"}), "title"},
		{"bad priority", request(t, MethodCreateTask, CreateTaskParams{Title: "a", Description: "b", Priority: "urgent"}), "priority"},
		{"unknown id", request(t, MethodToggleTask, TaskIDParams{ID: 999}), "not found"},
		{"bad params", Frame{Type: FrameTypeRequest, ID: "r1", Method: string(MethodDeleteTask), Params: json.RawMessage(`"x"`)}, "invalid params"},
	}
	for _, tt := range tests {
		f := hub.Handle(tt.frame)
		if f.OK == nil || *f.OK {
			t.Errorf("%s: expected ok=false", tt.name)
			continue
		}
		if !strings.Contains(f.Error, tt.want) {
			t.Errorf("%s: expected error containing %q, got %q", tt.name, tt.want, f.Error)
		}
	}
}

func TestServeWS_BroadcastsSnapshot(t *testing.T) {
	hub, _, _ := newTestHub(t)

	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for hub.Clients() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		case <-time.After(time.Millisecond):
		}
	}

	req, _ := MarshalFrame(request(t, MethodDeleteTask, TaskIDParams{ID: 1}))
	if err := conn.Write(ctx, websocket.MessageText, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	var gotResponse, gotSnapshot bool
	for !gotResponse || !gotSnapshot {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		f, err := UnmarshalFrame(data)
		if err != nil {
			t.Fatal(err)
		}
		switch {
		case f.Type == FrameTypeResponse && f.ID == "r1":
			gotResponse = true
		case f.Type == FrameTypeEvent && f.Event == string(events.EventTasksSnapshot):
			var p events.TasksSnapshotPayload
			if err := json.Unmarshal(f.Payload, &p); err != nil {
				t.Fatal(err)
			}
			if len(p.Tasks) != 2 {
				t.Errorf("expected 2 tasks in snapshot, got %d", len(p.Tasks))
			}
			gotSnapshot = true
		}
	}
}

func httpHandler(h *Hub) http.Handler {
	return http.HandlerFunc(h.ServeWS)
}
