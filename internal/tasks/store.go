package tasks

import (
	"log/slog"
	"slices"
	"sync"
)

// Persister is the load-at-start / save-on-change collaborator of a Store.
// Load returns the raw persisted snapshot, or nil when nothing is stored.
type Persister interface {
	Load() ([]byte, error)
	Save(tasks []Task) error
}

// Listener receives the new snapshot after every mutation.
type Listener func(snapshot []Task)

// Store owns the task collection. Every mutation replaces the whole
// collection and returns the new snapshot; earlier snapshots are never
// modified.
type Store struct {
	mu        sync.Mutex
	saveMu    sync.Mutex // serializes saves, taken without mu
	version   int64      // bumped per mutation, guarded by mu
	saved     int64      // last version written, guarded by saveMu
	tasks     []Task
	persister Persister
	listeners map[int]Listener
	nextSub   int
}

// NewStore creates a store holding initial. persister may be nil.
func NewStore(initial []Task, persister Persister) *Store {
	return &Store{
		tasks:     slices.Clone(initial),
		persister: persister,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current collection.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Create prepends t. When a task with the same id already exists it is
// replaced where it stands.
func (s *Store) Create(t Task) []Task {
	return s.apply(func(cur []Task) ([]Task, bool) {
		if i := indexOf(cur, t.ID); i >= 0 {
			next := slices.Clone(cur)
			next[i] = t
			return next, true
		}
		next := make([]Task, 0, len(cur)+1)
		next = append(next, t)
		return append(next, cur...), true
	})
}

// Update replaces the task with t's id. Unknown ids leave the collection as is.
func (s *Store) Update(t Task) []Task {
	snap, _ := s.update(t)
	return snap
}

// update is Update, also reporting whether t's id was present.
func (s *Store) update(t Task) ([]Task, bool) {
	return s.mutate(func(cur []Task) ([]Task, bool) {
		i := indexOf(cur, t.ID)
		if i < 0 {
			return cur, false
		}
		next := slices.Clone(cur)
		next[i] = t
		return next, true
	})
}

// Delete removes the task with the given id.
func (s *Store) Delete(id int64) []Task {
	return s.apply(func(cur []Task) ([]Task, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return cur, false
		}
		next := make([]Task, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		return append(next, cur[i+1:]...), true
	})
}

// ToggleCompleted flips the completed flag of the task with the given id.
func (s *Store) ToggleCompleted(id int64) []Task {
	return s.apply(func(cur []Task) ([]Task, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return cur, false
		}
		next := slices.Clone(cur)
		next[i].Completed = !next[i].Completed
		return next, true
	})
}

// Replace swaps in a whole new collection.
func (s *Store) Replace(tasks []Task) []Task {
	return s.apply(func(_ []Task) ([]Task, bool) {
		return slices.Clone(tasks), true
	})
}

// Subscribe registers fn to be called after every mutation.
// Returns an unsubscribe function.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) apply(fn func(cur []Task) ([]Task, bool)) []Task {
	snap, _ := s.mutate(fn)
	return snap
}

// mutate swaps in fn's result when fn reports a change. The save runs after
// mu is released so readers are not held up by storage. A save that finds a
// newer version already written is skipped, so storage never goes back to
// an older snapshot.
func (s *Store) mutate(fn func(cur []Task) ([]Task, bool)) ([]Task, bool) {
	s.mu.Lock()
	next, changed := fn(s.tasks)
	if !changed {
		out := slices.Clone(s.tasks)
		s.mu.Unlock()
		return out, false
	}
	s.tasks = next
	s.version++
	version := s.version

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.saveMu.Lock()
	if version > s.saved {
		s.save(next)
		s.saved = version
	}
	s.saveMu.Unlock()

	for _, l := range listeners {
		l(slices.Clone(next))
	}
	return slices.Clone(next), true
}

// save writes the snapshot through the persister. Failures are logged only.
func (s *Store) save(snapshot []Task) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(snapshot); err != nil {
		slog.Warn("persist tasks", "error", err, "count", len(snapshot))
	}
}

func indexOf(tasks []Task, id int64) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}
