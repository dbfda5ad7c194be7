package gateway

import (
	"github.com/dohr-michael/taskboard/internal/tasks"
)

// TaskHandler implements ws.TaskHandler and backs the HTTP task routes. Each
// request runs as a one-shot form over the shared board, so concurrent
// clients never share form state.
type TaskHandler struct {
	board *tasks.Board
}

// NewTaskHandler creates a task handler over board.
func NewTaskHandler(board *tasks.Board) *TaskHandler {
	return &TaskHandler{board: board}
}

// List returns the visible tasks for query: filtered, then priority sorted.
func (h *TaskHandler) List(query string) []tasks.Task {
	items := h.board.VisibleFor(query)
	out := make([]tasks.Task, len(items))
	for i, it := range items {
		out[i] = it.Task
	}
	return out
}

// Items is List rendered as list rows.
func (h *TaskHandler) Items(query string) []tasks.ListItem {
	return h.board.VisibleFor(query)
}

// Get returns the task with id.
func (h *TaskHandler) Get(id int64) (tasks.Task, bool) {
	return h.board.Store().Get(id)
}

// Count returns the number of stored tasks.
func (h *TaskHandler) Count() int {
	return h.board.Store().Len()
}

// Create adds a task built from f.
func (h *TaskHandler) Create(f tasks.Fields) (tasks.Task, error) {
	return h.board.Create(f)
}

// Edit replaces the editable fields of task id.
func (h *TaskHandler) Edit(id int64, f tasks.Fields) (tasks.Task, error) {
	return h.board.Edit(id, f)
}

// Toggle flips the completion flag of task id and returns the new state.
func (h *TaskHandler) Toggle(id int64) (tasks.Task, error) {
	if err := h.board.Dispatch(tasks.Intent{Kind: tasks.IntentToggle, ID: id}); err != nil {
		return tasks.Task{}, err
	}
	t, _ := h.board.Store().Get(id)
	return t, nil
}

// Delete removes task id and returns it as it was.
func (h *TaskHandler) Delete(id int64) (tasks.Task, error) {
	t, _ := h.board.Store().Get(id)
	if err := h.board.Dispatch(tasks.Intent{Kind: tasks.IntentDelete, ID: id}); err != nil {
		return tasks.Task{}, err
	}
	return t, nil
}

// Snapshot returns every stored task in store order.
func (h *TaskHandler) Snapshot() []tasks.Task {
	return h.board.Store().Snapshot()
}
