package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	wsclient "github.com/dohr-michael/taskboard/clients/ws"
	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/gateway"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// Backend is where the TUI reads and mutates tasks.
type Backend interface {
	// Name labels the backend in the status bar.
	Name() string
	// Page is the board holding the search query, the open form and the
	// rows the TUI shows.
	Page() *tasks.Board
	// Tasks fetches every task in store order.
	Tasks(ctx context.Context) ([]tasks.Task, error)
	// Sync brings Page in line with a fetched or pushed snapshot.
	Sync(list []tasks.Task)
	// Submit saves the form open on Page.
	Submit(ctx context.Context) (tasks.Task, error)
	Toggle(ctx context.Context, id int64) (tasks.Task, error)
	Delete(ctx context.Context, id int64) (tasks.Task, error)
	// Watch delivers live updates to send until ctx is done or the
	// backend goes away.
	Watch(ctx context.Context, send func(tea.Msg))
}

// LocalBackend drives an in-process board, which is also the page. Live
// updates come from the event bus the board is bridged to.
type LocalBackend struct {
	board   *tasks.Board
	handler *gateway.TaskHandler
	bus     *events.Bus
}

// NewLocalBackend creates a backend over board. bus may be nil, in which
// case no live updates are delivered.
func NewLocalBackend(board *tasks.Board, bus *events.Bus) *LocalBackend {
	return &LocalBackend{board: board, handler: gateway.NewTaskHandler(board), bus: bus}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Page() *tasks.Board { return b.board }

func (b *LocalBackend) Tasks(context.Context) ([]tasks.Task, error) {
	return b.handler.Snapshot(), nil
}

// Sync is a no-op: the board is the collection.
func (b *LocalBackend) Sync([]tasks.Task) {}

func (b *LocalBackend) Submit(context.Context) (tasks.Task, error) {
	return b.board.SubmitForm()
}

func (b *LocalBackend) Toggle(_ context.Context, id int64) (tasks.Task, error) {
	return b.handler.Toggle(id)
}

func (b *LocalBackend) Delete(_ context.Context, id int64) (tasks.Task, error) {
	return b.handler.Delete(id)
}

func (b *LocalBackend) Watch(ctx context.Context, send func(tea.Msg)) {
	if b.bus == nil {
		<-ctx.Done()
		return
	}

	ch, unsubscribe := b.bus.SubscribeChan(64)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if msg := ProjectEvent(e); msg != nil {
				send(msg)
			}
		}
	}
}

// RemoteBackend talks to a running gateway over WebSocket. Its page is a
// board over an in-memory mirror of the gateway's collection; form
// submissions are sent to the gateway instead of the mirror.
type RemoteBackend struct {
	url    string
	client *wsclient.Client
	page   *tasks.Board
}

// NewRemoteBackend wraps an already dialed client.
func NewRemoteBackend(url string, client *wsclient.Client) *RemoteBackend {
	return &RemoteBackend{
		url:    url,
		client: client,
		page:   tasks.NewBoard(tasks.NewStore(nil, nil), tasks.NewCounter(0)),
	}
}

func (b *RemoteBackend) Name() string { return b.url }

func (b *RemoteBackend) Page() *tasks.Board { return b.page }

func (b *RemoteBackend) Tasks(ctx context.Context) ([]tasks.Task, error) {
	return b.client.ListTasks(ctx, "")
}

func (b *RemoteBackend) Sync(list []tasks.Task) {
	b.page.Store().Replace(list)
}

func (b *RemoteBackend) Submit(ctx context.Context) (tasks.Task, error) {
	mode, fields := b.page.Form()
	editing, _ := b.page.Editing()
	b.page.CancelForm()

	switch mode {
	case tasks.FormCreate:
		return b.client.CreateTask(ctx, fields)
	case tasks.FormEdit:
		return b.client.UpdateTask(ctx, editing.ID, fields)
	}
	return tasks.Task{}, errors.New("form is not open")
}

func (b *RemoteBackend) Toggle(ctx context.Context, id int64) (tasks.Task, error) {
	return b.client.ToggleTask(ctx, id)
}

func (b *RemoteBackend) Delete(ctx context.Context, id int64) (tasks.Task, error) {
	return b.client.DeleteTask(ctx, id)
}

func (b *RemoteBackend) Watch(ctx context.Context, send func(tea.Msg)) {
	go func() {
		<-ctx.Done()
		_ = b.client.Close()
	}()

	for {
		frame, err := b.client.ReadFrame()
		if err != nil {
			if ctx.Err() == nil {
				send(DisconnectedMsg{Err: err})
			}
			return
		}
		if msg := Project(frame); msg != nil {
			send(msg)
		}
	}
}
