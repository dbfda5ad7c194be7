package tasks

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type memPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func (m *memPersister) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *memPersister) Save(tasks []Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// gatedPersister blocks each Save until released.
type gatedPersister struct {
	entered chan []Task
	release chan struct{}
}

func (p *gatedPersister) Load() ([]byte, error) { return nil, nil }

func (p *gatedPersister) Save(tasks []Task) error {
	p.entered <- tasks
	<-p.release
	return nil
}

func ids(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStoreCreatePrepends(t *testing.T) {
	p := &memPersister{}
	store := NewStore(Seed(), p)

	snap := store.Create(Task{ID: 10, Title: "New", Description: "d", Priority: PriorityLow})

	if got, want := ids(snap), []int64{10, 1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if p.saves != 1 {
		t.Errorf("expected 1 save, got %d", p.saves)
	}

	var persisted []Task
	if err := json.Unmarshal(p.data, &persisted); err != nil {
		t.Fatalf("unmarshal persisted: %v", err)
	}
	if len(persisted) != 4 {
		t.Errorf("expected 4 persisted tasks, got %d", len(persisted))
	}
}

func TestStoreCreateReplacesExistingID(t *testing.T) {
	store := NewStore(Seed(), nil)

	snap := store.Create(Task{ID: 2, Title: "Edited", Description: "x", Priority: PriorityLow})

	if got, want := ids(snap), []int64{1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if snap[1].Title != "Edited" {
		t.Errorf("expected replaced title, got %q", snap[1].Title)
	}
}

func TestStoreUpdateKeepsOrder(t *testing.T) {
	store := NewStore(Seed(), nil)

	snap := store.Update(Task{ID: 1, Title: "Study hard", Description: "all modules", Priority: PriorityHigh})

	if got, want := ids(snap), []int64{1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if snap[0].Title != "Study hard" || snap[0].Priority != PriorityHigh {
		t.Errorf("update not applied: %+v", snap[0])
	}
	if snap[1] != Seed()[1] || snap[2] != Seed()[2] {
		t.Error("other tasks changed")
	}
}

func TestStoreUpdateUnknownIsNoop(t *testing.T) {
	p := &memPersister{}
	store := NewStore(Seed(), p)

	snap := store.Update(Task{ID: 99, Title: "ghost"})

	if len(snap) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(snap))
	}
	if p.saves != 0 {
		t.Errorf("expected no save for unknown id, got %d", p.saves)
	}
}

func TestStoreDeleteRemovesOnlyThatID(t *testing.T) {
	store := NewStore(Seed(), nil)

	snap := store.Delete(2)

	if got, want := ids(snap), []int64{1, 3}; !equalIDs(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if snap[0] != Seed()[0] || snap[1] != Seed()[2] {
		t.Error("remaining tasks changed")
	}
}

func TestStoreToggleTwiceRestores(t *testing.T) {
	store := NewStore(Seed(), nil)

	first := store.ToggleCompleted(3)
	if !first[2].Completed {
		t.Fatal("expected completed after first toggle")
	}

	second := store.ToggleCompleted(3)
	if second[2] != Seed()[2] {
		t.Errorf("expected original task after two toggles, got %+v", second[2])
	}
}

func TestStoreSnapshotsAreImmutable(t *testing.T) {
	store := NewStore(Seed(), nil)

	before := store.Snapshot()
	store.ToggleCompleted(1)
	store.Delete(2)

	if len(before) != 3 || before[0].Completed {
		t.Errorf("earlier snapshot was modified: %+v", before)
	}

	snap := store.Snapshot()
	snap[0].Title = "mutated by caller"
	if got, _ := store.Get(1); got.Title == "mutated by caller" {
		t.Error("caller mutation leaked into store")
	}
}

func TestStoreSaveFailureIsSilent(t *testing.T) {
	p := &memPersister{err: errors.New("disk full")}
	store := NewStore(Seed(), p)

	snap := store.Delete(1)

	if len(snap) != 2 {
		t.Fatalf("expected mutation to apply despite save failure, got %d tasks", len(snap))
	}
	if p.saves != 1 {
		t.Errorf("expected 1 save attempt, got %d", p.saves)
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(Seed(), nil)

	var got [][]Task
	unsub := store.Subscribe(func(s []Task) { got = append(got, s) })

	store.Delete(1)
	store.ToggleCompleted(2)
	unsub()
	store.Delete(2)

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if len(got[0]) != 2 {
		t.Errorf("first snapshot: expected 2 tasks, got %d", len(got[0]))
	}
	if !got[1][0].Completed {
		t.Error("second snapshot should carry the toggle")
	}
}

func TestCounterAndClockIDs(t *testing.T) {
	c := NewCounter(3)
	if id := c.NextID(); id != 4 {
		t.Errorf("expected 4, got %d", id)
	}
	if id := c.NextID(); id != 5 {
		t.Errorf("expected 5, got %d", id)
	}

	clock := NewClockIDs(0)
	seen := make(map[int64]bool)
	var last int64
	for i := 0; i < 1000; i++ {
		id := clock.NextID()
		if id <= last {
			t.Fatalf("id %d not greater than %d", id, last)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		last = id
	}
}

func TestStoreReadsDuringSlowSave(t *testing.T) {
	p := &gatedPersister{entered: make(chan []Task, 2), release: make(chan struct{})}
	store := NewStore(Seed(), p)

	done := make(chan struct{})
	go func() {
		store.Delete(1)
		close(done)
	}()
	<-p.entered

	read := make(chan int, 1)
	go func() {
		if _, ok := store.Get(2); !ok {
			t.Error("task 2 missing")
		}
		read <- store.Len()
	}()

	select {
	case n := <-read:
		if n != 2 {
			t.Errorf("Len = %d, want 2", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reads waited for the save")
	}

	close(p.release)
	<-done
}

func TestStoreSavesInMutationOrder(t *testing.T) {
	p := &gatedPersister{entered: make(chan []Task, 2), release: make(chan struct{})}
	store := NewStore(Seed(), p)

	go store.Delete(1)
	first := <-p.entered

	second := make(chan struct{})
	go func() {
		store.Delete(2)
		close(second)
	}()

	// The second save cannot start while the first is in flight.
	select {
	case snap := <-p.entered:
		t.Fatalf("second save started early with %d tasks", len(snap))
	case <-time.After(50 * time.Millisecond):
	}

	close(p.release)
	last := <-p.entered
	<-second

	if len(first) != 2 || len(last) != 1 {
		t.Errorf("saves = %d then %d tasks, want 2 then 1", len(first), len(last))
	}
}
