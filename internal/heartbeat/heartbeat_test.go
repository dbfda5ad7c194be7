package heartbeat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWriteReadCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "heartbeat.json")

	w := NewWriter(path, func() Info {
		return Info{Addr: "127.0.0.1:18421", Storage: "dir", Tasks: 3}
	})
	w.Start()
	defer w.Stop()

	status, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusAlive {
		t.Errorf("expected alive, got %s", status)
	}
	if hb == nil {
		t.Fatal("expected heartbeat, got nil")
	}
	if hb.PID != os.Getpid() {
		t.Errorf("PID: got %d, want %d", hb.PID, os.Getpid())
	}
	if hb.Addr != "127.0.0.1:18421" || hb.Tasks != 3 || hb.Storage != "dir" {
		t.Errorf("unexpected info: %+v", hb)
	}
	if hb.Uptime == "" {
		t.Error("expected non-empty uptime")
	}
}

func TestBeatRefreshesInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	var count atomic.Int64
	count.Store(3)
	w := NewWriter(path, func() Info { return Info{Tasks: int(count.Load())} })

	w.Beat()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("Beat before Start must not write")
	}

	w.Start()
	defer w.Stop()

	count.Store(5)
	w.Beat()

	_, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatal(err)
	}
	if hb.Tasks != 5 {
		t.Errorf("expected 5 tasks after Beat, got %d", hb.Tasks)
	}
}

func TestStaleDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	old := Heartbeat{
		PID:       os.Getpid(),
		StartedAt: time.Now().Add(-2 * time.Hour),
		Timestamp: time.Now().Add(-1 * time.Hour),
		Uptime:    "1h0m0s",
	}
	data, _ := json.Marshal(old)
	os.WriteFile(path, data, 0o644)

	status, hb, err := Check(path, 30*time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusStale {
		t.Errorf("expected stale, got %s", status)
	}
	if hb == nil {
		t.Fatal("expected heartbeat, got nil")
	}
}

func TestDeadDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	status, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusDead {
		t.Errorf("expected dead, got %s", status)
	}
	if hb != nil {
		t.Errorf("expected nil heartbeat, got %+v", hb)
	}
}

func TestCorruptHeartbeat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	status, _, err := Check(path, DefaultMaxAge)
	if err == nil || status != StatusDead {
		t.Errorf("expected dead with error, got %s, %v", status, err)
	}
}

func TestStopRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	w := NewWriter(path, nil)
	w.Start()
	w.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected heartbeat file to be removed after Stop")
	}
}
