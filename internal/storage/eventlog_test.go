package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dohr-michael/taskboard/internal/events"
	"github.com/dohr-michael/taskboard/internal/tasks"
)

func TestEventLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	ts := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	bus.Publish(events.Event{
		ID:        "evt-1",
		Type:      events.EventTaskCreated,
		Timestamp: ts,
		Source:    events.SourceGateway,
		Payload:   map[string]any{"task": map[string]any{"id": 1}},
	})

	// Give the async subscriber time to process.
	time.Sleep(100 * time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, "2026-03-04.jsonl"))
	if err != nil {
		t.Fatalf("read JSONL: %v", err)
	}

	var got events.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "evt-1" {
		t.Errorf("got ID %q, want %q", got.ID, "evt-1")
	}
	if got.Type != events.EventTaskCreated {
		t.Errorf("got type %q, want %q", got.Type, events.EventTaskCreated)
	}
}

func TestEventLogger_SkipsSnapshots(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	for _, e := range events.FromChange(events.SourceCLI, tasks.Change{
		Op:       tasks.OpDeleted,
		Task:     tasks.Task{ID: 1},
		Snapshot: []tasks.Task{},
	}) {
		bus.Publish(e)
	}
	time.Sleep(100 * time.Millisecond)

	files, _ := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if len(files) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(files))
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 1 {
		t.Errorf("expected 1 line (snapshot skipped), got %d", lines)
	}
}

func TestReadEventLog(t *testing.T) {
	dir := t.TempDir()
	el := &EventLogger{dir: dir}

	days := []time.Time{
		time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	for i, ts := range days {
		e := events.Event{ID: string(rune('a' + i)), Type: events.EventTaskToggled, Timestamp: ts}
		if err := el.writeEvent(e); err != nil {
			t.Fatalf("writeEvent: %v", err)
		}
	}

	got, err := ReadEventLog(dir, 2)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("unexpected events: %+v", got)
	}

	all, err := ReadEventLog(dir, 0)
	if err != nil || len(all) != 3 || all[0].ID != "a" {
		t.Errorf("expected all 3 oldest first, got %d (%v)", len(all), err)
	}

	none, err := ReadEventLog(filepath.Join(dir, "missing"), 5)
	if err != nil || len(none) != 0 {
		t.Errorf("expected no events for missing dir, got %d (%v)", len(none), err)
	}
}

func TestPruneEventLog(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2026-01-01.jsonl", "2026-01-02.jsonl", "2026-01-10.jsonl", "notes.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC)
	removed, err := PruneEventLog(dir, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("PruneEventLog: %v", err)
	}
	if len(removed) != 2 || removed[0] != "2026-01-01.jsonl" || removed[1] != "2026-01-02.jsonl" {
		t.Errorf("removed = %v", removed)
	}

	left, _ := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if len(left) != 2 {
		t.Errorf("expected 2 files left, got %v", left)
	}

	if removed, _ := PruneEventLog(dir, 0, now); removed != nil {
		t.Error("zero retention should keep everything")
	}
}
