package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// TaskHandler performs the task operations behind the request methods.
// Each call returns the task acted on.
type TaskHandler interface {
	List(query string) []tasks.Task
	Create(f tasks.Fields) (tasks.Task, error)
	Edit(id int64, f tasks.Fields) (tasks.Task, error)
	Toggle(id int64) (tasks.Task, error)
	Delete(id int64) (tasks.Task, error)
}

// Client represents a connected WebSocket client.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub manages WebSocket clients, serves task requests, and bridges bus
// events to every client.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	handler     TaskHandler
	unsubscribe func()
}

// NewHub creates a new WebSocket hub connected to an event bus.
func NewHub(bus *events.Bus, handler TaskHandler) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		handler: handler,
	}

	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		frame, err := NewEventFrame(string(e.Type), e.Payload)
		if err != nil {
			slog.Error("marshal event frame", "error", err)
			return
		}
		data, err := MarshalFrame(frame)
		if err != nil {
			slog.Error("marshal frame", "error", err)
			return
		}
		h.broadcast(data)
	})

	return h
}

// broadcast sends data to all connected clients.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws client connected", "clients", len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("ws client disconnected", "clients", len(h.clients))
	}
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow any origin for dev
	})
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws unmarshal frame", "error", err)
			continue
		}

		if frame.Type != FrameTypeRequest {
			slog.Debug("ws unknown frame type", "type", frame.Type)
			continue
		}
		c.enqueue(c.hub.Handle(frame))
	}
}

// Handle answers one request frame. It is independent of any connection.
func (h *Hub) Handle(frame Frame) Frame {
	if h.handler == nil {
		return errorFrame(frame.ID, "task system not available")
	}

	var (
		task tasks.Task
		err  error
	)

	switch Method(frame.Method) {
	case MethodListTasks:
		var p ListTasksParams
		if len(frame.Params) > 0 {
			if err := json.Unmarshal(frame.Params, &p); err != nil {
				return errorFrame(frame.ID, "invalid params")
			}
		}
		return okFrame(frame.ID, TasksResult{Tasks: nonNil(h.handler.List(p.Query))})

	case MethodCreateTask:
		var p CreateTaskParams
		if err := json.Unmarshal(frame.Params, &p); err != nil {
			return errorFrame(frame.ID, "invalid params")
		}
		task, err = h.handler.Create(tasks.Fields{Title: p.Title, Description: p.Description, Priority: defaultPriority(p.Priority)})

	case MethodUpdateTask:
		var p UpdateTaskParams
		if err := json.Unmarshal(frame.Params, &p); err != nil {
			return errorFrame(frame.ID, "invalid params")
		}
		task, err = h.handler.Edit(p.ID, tasks.Fields{Title: p.Title, Description: p.Description, Priority: defaultPriority(p.Priority)})

	case MethodDeleteTask, MethodToggleTask:
		var p TaskIDParams
		if err := json.Unmarshal(frame.Params, &p); err != nil {
			return errorFrame(frame.ID, "invalid params")
		}
		if Method(frame.Method) == MethodDeleteTask {
			task, err = h.handler.Delete(p.ID)
		} else {
			task, err = h.handler.Toggle(p.ID)
		}

	default:
		return errorFrame(frame.ID, "unknown method: "+frame.Method)
	}

	if err != nil {
		return errorFrame(frame.ID, err.Error())
	}
	return okFrame(frame.ID, TasksResult{Task: &task, Tasks: nonNil(h.handler.List(""))})
}

func defaultPriority(p tasks.Priority) tasks.Priority {
	if p == "" {
		return tasks.PriorityMedium
	}
	return p
}

func nonNil(list []tasks.Task) []tasks.Task {
	if list == nil {
		return []tasks.Task{}
	}
	return list
}

func okFrame(id string, payload any) Frame {
	f, err := NewResponseFrame(id, true, payload, "")
	if err != nil {
		return errorFrame(id, err.Error())
	}
	return f
}

func errorFrame(id string, msg string) Frame {
	f, _ := NewResponseFrame(id, false, nil, msg)
	return f
}

// writePump writes queued messages to the WS connection.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Debug("ws write", "error", err)
				}
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) enqueue(f Frame) {
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close shuts down the hub and all client connections.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(h.clients, c)
	}
}
