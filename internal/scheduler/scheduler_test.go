package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dohr-michael/taskboard/internal/events"
)

func counter(n *atomic.Int32, done chan<- struct{}) JobFunc {
	return func(context.Context) error {
		n.Add(1)
		if done != nil {
			done <- struct{}{}
		}
		return nil
	}
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for job")
	}
}

func TestScheduler_AddValidation(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	if err := s.Add(Job{Name: "backup", Cron: "@daily", Run: noop}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(Job{Name: "backup", Run: noop}); err == nil {
		t.Error("expected duplicate name error")
	}
	if err := s.Add(Job{Name: "bad", Cron: "every tuesday", Run: noop}); err == nil {
		t.Error("expected cron parse error")
	}
	if err := s.Add(Job{Name: "empty"}); err == nil {
		t.Error("expected error without run func")
	}
	if err := s.Add(Job{Name: "manual", Cron: "off", Run: noop}); err != nil {
		t.Errorf("off should register a manual job: %v", err)
	}

	jobs := s.Jobs()
	if len(jobs) != 2 || jobs[0].Name != "backup" || jobs[1].Name != "manual" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
	if jobs[0].Next.IsZero() || !jobs[1].Next.IsZero() {
		t.Errorf("next run wrong: %+v", jobs)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(nil)
	var n atomic.Int32
	boom := errors.New("boom")

	_ = s.Add(Job{Name: "ok", Run: counter(&n, nil)})
	_ = s.Add(Job{Name: "fail", Run: func(context.Context) error { return boom }})

	if err := s.RunNow(context.Background(), "ok"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if err := s.RunNow(context.Background(), "ok"); err != nil {
		t.Fatalf("RunNow ignores cooldown: %v", err)
	}
	if n.Load() != 2 {
		t.Errorf("runs = %d, want 2", n.Load())
	}

	if err := s.RunNow(context.Background(), "fail"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if err := s.RunNow(context.Background(), "missing"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("expected ErrUnknownJob, got %v", err)
	}

	jobs := s.Jobs()
	if jobs[0].Name != "fail" || jobs[0].LastError != "boom" || jobs[0].Runs != 1 {
		t.Errorf("unexpected fail status: %+v", jobs[0])
	}
	if jobs[1].Runs != 2 || jobs[1].LastRun.IsZero() {
		t.Errorf("unexpected ok status: %+v", jobs[1])
	}
}

func TestScheduler_CronTrigger(t *testing.T) {
	s := New(nil)
	var n atomic.Int32
	done := make(chan struct{}, 4)
	_ = s.Add(Job{Name: "prune", Cron: "30 3 * * *", Run: counter(&n, done)})

	s.Start(context.Background())
	defer s.Stop()

	at := time.Date(2026, 5, 4, 3, 30, 10, 0, time.UTC)
	s.checkCron(at.Add(-time.Minute))
	s.checkCron(at)
	wait(t, done)

	// Same minute again: cooling down.
	s.checkCron(at.Add(20 * time.Second))
	time.Sleep(50 * time.Millisecond)

	if n.Load() != 1 {
		t.Errorf("runs = %d, want 1", n.Load())
	}
}

func TestScheduler_EventTrigger(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	s := New(bus)
	var n atomic.Int32
	done := make(chan struct{}, 4)
	_ = s.Add(Job{
		Name:     "backup",
		OnEvents: []events.EventType{events.EventStorageSaveFailed},
		Run:      counter(&n, done),
	})

	s.Start(context.Background())
	defer s.Stop()

	bus.Publish(events.NewTypedEvent(events.SourceGateway, events.StorageSaveFailedPayload{Error: "disk full", Count: 3}))
	wait(t, done)

	// Inside the cooldown, and from the scheduler itself: neither fires.
	bus.Publish(events.NewTypedEvent(events.SourceGateway, events.StorageSaveFailedPayload{Error: "disk full", Count: 3}))
	bus.Publish(events.NewTypedEvent(events.SourceCron, events.StorageSaveFailedPayload{Error: "disk full", Count: 3}))
	time.Sleep(100 * time.Millisecond)

	if n.Load() != 1 {
		t.Errorf("runs = %d, want 1", n.Load())
	}
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	s := New(bus)
	started := make(chan struct{})
	var cancelled atomic.Bool
	_ = s.Add(Job{
		Name:     "slow",
		OnEvents: []events.EventType{events.EventTasksReset},
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			cancelled.Store(true)
			return ctx.Err()
		},
	})

	s.Start(context.Background())
	bus.Publish(events.NewTypedEvent(events.SourceCLI, events.TasksResetPayload{Count: 3}))
	wait(t, started)

	s.Stop()
	if !cancelled.Load() {
		t.Error("Stop should cancel and wait for running jobs")
	}
}
