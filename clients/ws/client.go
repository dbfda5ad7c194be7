// Package ws provides a WebSocket client for the taskboard gateway.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	wsprotocol "github.com/dohr-michael/taskboard/internal/gateway/ws"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

var ErrClosed = errors.New("ws client closed")

// Client is a WebSocket client for the taskboard gateway. A background
// reader routes response frames to their pending Call and queues event
// frames for ReadFrame.
type Client struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan wsprotocol.Frame
	events  chan wsprotocol.Frame
	err     error
	done    chan struct{}
}

// Dial connects to the gateway WebSocket endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(context.Background())

	c := &Client{
		conn:    conn,
		ctx:     clientCtx,
		cancel:  cancel,
		pending: make(map[string]chan wsprotocol.Frame),
		events:  make(chan wsprotocol.Frame, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.fail(err)
			return
		}

		frame, err := wsprotocol.UnmarshalFrame(data)
		if err != nil {
			continue
		}

		switch frame.Type {
		case wsprotocol.FrameTypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()
			if ok {
				ch <- frame
			}
		case wsprotocol.FrameTypeEvent:
			select {
			case c.events <- frame:
			default:
				// Reader too slow, drop; the next snapshot supersedes it.
			}
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// Err returns the error that stopped the reader, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Call sends a request and waits for its response. On success the payload
// is decoded into out when out is non-nil.
func (c *Client) Call(ctx context.Context, method wsprotocol.Method, params, out any) error {
	id := uuid.NewString()
	frame, err := wsprotocol.NewRequestFrame(id, method, params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	data, err := wsprotocol.MarshalFrame(frame)
	if err != nil {
		return err
	}

	ch := make(chan wsprotocol.Frame, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrClosed, c.err)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("ws write: %w", err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if res.OK == nil || !*res.OK {
			return errors.New(res.Error)
		}
		if out != nil && len(res.Payload) > 0 {
			return json.Unmarshal(res.Payload, out)
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	}
}

// ReadFrame returns the next event frame, blocking until one arrives or the
// connection ends.
func (c *Client) ReadFrame() (wsprotocol.Frame, error) {
	frame, ok := <-c.events
	if !ok {
		if err := c.Err(); err != nil {
			return wsprotocol.Frame{}, err
		}
		return wsprotocol.Frame{}, ErrClosed
	}
	return frame, nil
}

// ListTasks returns the visible tasks for query.
func (c *Client) ListTasks(ctx context.Context, query string) ([]tasks.Task, error) {
	var res wsprotocol.TasksResult
	err := c.Call(ctx, wsprotocol.MethodListTasks, wsprotocol.ListTasksParams{Query: query}, &res)
	return res.Tasks, err
}

// CreateTask creates a task from f.
func (c *Client) CreateTask(ctx context.Context, f tasks.Fields) (tasks.Task, error) {
	return c.taskCall(ctx, wsprotocol.MethodCreateTask, wsprotocol.CreateTaskParams{
		Title: f.Title, Description: f.Description, Priority: f.Priority,
	})
}

// UpdateTask edits task id.
func (c *Client) UpdateTask(ctx context.Context, id int64, f tasks.Fields) (tasks.Task, error) {
	return c.taskCall(ctx, wsprotocol.MethodUpdateTask, wsprotocol.UpdateTaskParams{
		ID: id, Title: f.Title, Description: f.Description, Priority: f.Priority,
	})
}

// ToggleTask flips completion of task id.
func (c *Client) ToggleTask(ctx context.Context, id int64) (tasks.Task, error) {
	return c.taskCall(ctx, wsprotocol.MethodToggleTask, wsprotocol.TaskIDParams{ID: id})
}

// DeleteTask removes task id.
func (c *Client) DeleteTask(ctx context.Context, id int64) (tasks.Task, error) {
	return c.taskCall(ctx, wsprotocol.MethodDeleteTask, wsprotocol.TaskIDParams{ID: id})
}

func (c *Client) taskCall(ctx context.Context, method wsprotocol.Method, params any) (tasks.Task, error) {
	var res wsprotocol.TasksResult
	if err := c.Call(ctx, method, params, &res); err != nil {
		return tasks.Task{}, err
	}
	if res.Task == nil {
		return tasks.Task{}, fmt.Errorf("%s: response without task", method)
	}
	return *res.Task, nil
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "bye")
	c.cancel()
	<-c.done
	return err
}
