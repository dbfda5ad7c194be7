package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "tasks"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "tasks", []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "tasks", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok, err := kv.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Get = %s, want [1,2]", got)
	}

	if err := kv.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "tasks"); ok {
		t.Error("expected key gone after Delete")
	}
	if err := kv.Delete(ctx, "tasks"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestDirKV(t *testing.T) {
	exerciseKV(t, NewDirKV(filepath.Join(t.TempDir(), "nested", "store")))
}

func TestDirKVLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	kv := NewDirKV(dir)
	if err := kv.Set(context.Background(), "tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "tasks.json" {
		t.Errorf("unexpected dir contents: %v", entries)
	}
}

func TestMemKV(t *testing.T) {
	exerciseKV(t, NewMemKV())
}

func TestSQLiteKV(t *testing.T) {
	kv, err := Open(context.Background(), Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "kv.db")})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer kv.Close()

	exerciseKV(t, kv)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "redis"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestOpenMySQLRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mysql"}); err == nil {
		t.Error("expected error without dsn")
	}
}

func TestSnapshotPersisterRoundTrip(t *testing.T) {
	kv := NewDirKV(t.TempDir())
	p := NewSnapshotPersister(kv, "")

	got, src := tasks.Load(p, tasks.Seed())
	if src != tasks.SourceSeed || len(got) != 3 {
		t.Fatalf("expected seed on empty storage, got %s with %d tasks", src, len(got))
	}

	store := tasks.NewStore(got, p)
	store.Delete(1)
	store.Delete(2)

	reloaded, src := tasks.Load(p, tasks.Seed())
	if src != tasks.SourcePersisted {
		t.Fatalf("expected persisted source, got %s", src)
	}
	if len(reloaded) != 1 || reloaded[0].Title != "Go for a walk" {
		t.Errorf("unexpected reloaded tasks: %+v", reloaded)
	}

	store.Delete(3)
	if _, src := tasks.Load(p, tasks.Seed()); src != tasks.SourceSeed {
		t.Errorf("empty persisted array should fall back to seed, got %s", src)
	}

	if err := p.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if data, err := p.Load(); err != nil || data != nil {
		t.Errorf("expected nil after Clear, got %q, %v", data, err)
	}
}

type failingKV struct{ *MemKV }

func (*failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSnapshotPersisterReportsSaveErrors(t *testing.T) {
	p := NewSnapshotPersister(&failingKV{MemKV: NewMemKV()}, "")

	var gotErr error
	var gotCount int
	p.OnSaveError(func(err error, count int) {
		gotErr, gotCount = err, count
	})

	store := tasks.NewStore(tasks.Seed(), p)
	store.Delete(1)

	if gotErr == nil || gotErr.Error() != "disk full" {
		t.Fatalf("expected disk full error, got %v", gotErr)
	}
	if gotCount != 2 {
		t.Errorf("count = %d, want 2", gotCount)
	}
	if store.Len() != 2 {
		t.Errorf("in-memory delete should stick, got %d tasks", store.Len())
	}
}
