package tasks

import (
	"fmt"
	"strings"
	"sync"
)

// MissingFieldsError rejects a form submission with blank required fields.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Op names a board mutation.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
	OpToggled Op = "toggled"
	OpReset   Op = "reset"
)

// Change describes one applied mutation.
type Change struct {
	Op       Op
	Task     Task
	Snapshot []Task
}

// Board is the page: it wires the store, the search query, the form and the
// list view, and turns user intents into store operations.
type Board struct {
	mu       sync.Mutex
	store    *Store
	ids      IDGenerator
	form     *Form
	query    string
	onChange []func(Change)
}

// NewBoard creates a board over store, minting new ids from ids.
func NewBoard(store *Store, ids IDGenerator) *Board {
	return &Board{
		store: store,
		ids:   ids,
		form:  NewForm(ids),
	}
}

// Store returns the underlying store.
func (b *Board) Store() *Store { return b.store }

// OnChange registers fn to run after each mutation made through the board.
func (b *Board) OnChange(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = append(b.onChange, fn)
}

// SetQuery sets the live search query.
func (b *Board) SetQuery(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = q
}

// Query returns the live search query.
func (b *Board) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Visible returns the filtered, priority-sorted rows for the current query.
func (b *Board) Visible() []ListItem {
	return b.VisibleFor(b.Query())
}

// VisibleFor returns the filtered, priority-sorted rows for query.
func (b *Board) VisibleFor(query string) []ListItem {
	return ListView(SortByPriority(Filter(b.store.Snapshot(), query)))
}

// Form returns a copy of the form state.
func (b *Board) Form() (mode FormMode, fields Fields) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form.Mode(), b.form.Fields()
}

// Editing returns the task the open form is editing, if any.
func (b *Board) Editing() (Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form.Editing()
}

// OpenAdd opens the form in create mode.
func (b *Board) OpenAdd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.form.OpenCreate()
}

// SetFormFields replaces the field values of the open form.
func (b *Board) SetFormFields(f Fields) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.form.SetFields(f)
}

// CancelForm closes the form.
func (b *Board) CancelForm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.form.Cancel()
}

// SubmitForm submits the open form. Blank required fields keep the form
// open and return a *MissingFieldsError. An edit whose task was deleted
// meanwhile closes the form and returns ErrNotFound.
func (b *Board) SubmitForm() (Task, error) {
	b.mu.Lock()
	if !b.form.Open() {
		b.mu.Unlock()
		return Task{}, fmt.Errorf("form is not open")
	}
	if missing := b.form.Fields().Missing(); len(missing) > 0 {
		b.mu.Unlock()
		return Task{}, &MissingFieldsError{Fields: missing}
	}
	_, editing := b.form.Editing()
	t, _ := b.form.Submit()
	b.mu.Unlock()

	if editing {
		return b.applyEdit(t)
	}
	snap := b.store.Create(t)
	b.emit(Change{Op: OpCreated, Task: t, Snapshot: snap})
	return t, nil
}

func (b *Board) applyEdit(t Task) (Task, error) {
	snap, ok := b.store.update(t)
	if !ok {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, t.ID)
	}
	b.emit(Change{Op: OpUpdated, Task: t, Snapshot: snap})
	return t, nil
}

// Dispatch applies a list intent. Edit intents open the form.
func (b *Board) Dispatch(in Intent) error {
	t, ok := b.store.Get(in.ID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, in.ID)
	}

	switch in.Kind {
	case IntentToggle:
		snap := b.store.ToggleCompleted(in.ID)
		t.Completed = !t.Completed
		b.emit(Change{Op: OpToggled, Task: t, Snapshot: snap})
	case IntentDelete:
		snap := b.store.Delete(in.ID)
		b.emit(Change{Op: OpDeleted, Task: t, Snapshot: snap})
	case IntentEdit:
		b.mu.Lock()
		b.form.OpenEdit(t)
		b.mu.Unlock()
	default:
		return fmt.Errorf("unknown intent %q", in.Kind)
	}
	return nil
}

// Create runs a one-shot create-mode form with fields.
func (b *Board) Create(f Fields) (Task, error) {
	if missing := f.Missing(); len(missing) > 0 {
		return Task{}, &MissingFieldsError{Fields: missing}
	}
	if !f.Priority.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, f.Priority)
	}

	form := NewForm(b.ids)
	form.OpenCreate()
	form.SetFields(f)
	t, _ := form.Submit()

	snap := b.store.Create(t)
	b.emit(Change{Op: OpCreated, Task: t, Snapshot: snap})
	return t, nil
}

// Edit runs a one-shot edit-mode form for task id with fields.
func (b *Board) Edit(id int64, f Fields) (Task, error) {
	orig, ok := b.store.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if missing := f.Missing(); len(missing) > 0 {
		return Task{}, &MissingFieldsError{Fields: missing}
	}
	if !f.Priority.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, f.Priority)
	}

	form := NewForm(b.ids)
	form.OpenEdit(orig)
	form.SetFields(f)
	t, _ := form.Submit()
	return b.applyEdit(t)
}

// Reset replaces the collection with tasks (e.g. the seed list).
func (b *Board) Reset(tasks []Task) []Task {
	snap := b.store.Replace(tasks)
	b.emit(Change{Op: OpReset, Snapshot: snap})
	return snap
}

func (b *Board) emit(c Change) {
	b.mu.Lock()
	fns := append([]func(Change){}, b.onChange...)
	b.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
