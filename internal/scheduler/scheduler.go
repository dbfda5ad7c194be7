// Package scheduler runs named maintenance jobs on cron schedules and in
// response to bus events.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dohr-michael/taskboard/internal/events"
)

// DefaultCooldown is the minimum interval between two triggers of the same job.
const DefaultCooldown = 60 * time.Second

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job already running")
)

// JobFunc is the work a job performs.
type JobFunc func(ctx context.Context) error

// Job describes a job to register.
type Job struct {
	Name string
	// Cron is a 5-field expression or descriptor; "" or "off" leaves the
	// job manual and event driven only.
	Cron     string
	OnEvents []events.EventType
	Cooldown time.Duration
	Run      JobFunc
}

// JobStatus is a point-in-time view of a registered job.
type JobStatus struct {
	Name      string
	Cron      string
	Next      time.Time
	LastRun   time.Time
	Runs      int
	LastError string
	Running   bool
}

type runtimeJob struct {
	name     string
	cron     *CronExpr
	onEvents []events.EventType
	cooldown time.Duration
	run      JobFunc

	lastRun time.Time
	runs    int
	lastErr error
	running bool
}

// Scheduler triggers registered jobs. Each job runs at most once at a time.
type Scheduler struct {
	bus *events.Bus
	now func() time.Time

	mu   sync.Mutex
	jobs map[string]*runtimeJob

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

// New creates a scheduler. bus may be nil when no job listens for events.
func New(bus *events.Bus) *Scheduler {
	return &Scheduler{
		bus:  bus,
		now:  time.Now,
		jobs: make(map[string]*runtimeJob),
	}
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(j Job) error {
	if j.Name == "" || j.Run == nil {
		return fmt.Errorf("job needs a name and a run func")
	}

	rj := &runtimeJob{
		name:     j.Name,
		onEvents: j.OnEvents,
		cooldown: j.Cooldown,
		run:      j.Run,
	}
	if !Disabled(j.Cron) {
		expr, err := ParseCron(j.Cron)
		if err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
		rj.cron = expr
	}
	if rj.cooldown == 0 {
		rj.cooldown = DefaultCooldown
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[j.Name]; dup {
		return fmt.Errorf("job %s already registered", j.Name)
	}
	s.jobs[j.Name] = rj

	slog.Debug("scheduler: added job", "job", j.Name, "cron", j.Cron, "events", len(j.OnEvents))
	return nil
}

// Start begins the minute ticker and event subscription. Jobs triggered
// afterwards receive a context cancelled by Stop or by ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	n := len(s.jobs)
	s.mu.Unlock()

	if s.bus != nil {
		s.unsubscribe = s.bus.Subscribe(s.handleEvent)
	}

	s.wg.Add(1)
	go s.cronLoop()

	slog.Info("scheduler started", "jobs", n)
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

// RunNow runs the named job synchronously, ignoring its cooldown.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if j.running {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	s.begin(j, s.now())
	s.mu.Unlock()

	return s.execute(ctx, j, "manual")
}

// Jobs returns the status of every job, sorted by name.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := JobStatus{
			Name:    j.name,
			LastRun: j.lastRun,
			Runs:    j.runs,
			Running: j.running,
		}
		if j.cron != nil {
			st.Cron = j.cron.String()
			st.Next = j.cron.Next(now)
		}
		if j.lastErr != nil {
			st.LastError = j.lastErr.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *Scheduler) cronLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.checkCron(now)
		}
	}
}

func (s *Scheduler) checkCron(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.cron == nil || !j.cron.Matches(now) {
			continue
		}
		s.triggerLocked(j, now, "cron")
	}
}

func (s *Scheduler) handleEvent(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, j := range s.jobs {
		if !MatchEvent(e, j.onEvents) {
			continue
		}
		s.triggerLocked(j, now, "event:"+string(e.Type))
	}
}

// triggerLocked starts j in the background unless it is running or cooling
// down. Caller must hold s.mu.
func (s *Scheduler) triggerLocked(j *runtimeJob, now time.Time, trigger string) {
	if j.running || (!j.lastRun.IsZero() && now.Sub(j.lastRun) < j.cooldown) {
		return
	}
	if s.ctx == nil || s.ctx.Err() != nil {
		return
	}
	s.begin(j, now)

	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.execute(ctx, j, trigger)
	}()
}

// begin marks j as running. Caller must hold s.mu.
func (s *Scheduler) begin(j *runtimeJob, now time.Time) {
	j.running = true
	j.lastRun = now
}

func (s *Scheduler) execute(ctx context.Context, j *runtimeJob, trigger string) error {
	start := time.Now()
	err := j.run(ctx)

	s.mu.Lock()
	j.running = false
	j.runs++
	j.lastErr = err
	s.mu.Unlock()

	if err != nil {
		slog.Error("scheduler: job failed", "job", j.name, "trigger", trigger, "error", err)
		return err
	}
	slog.Info("scheduler: job done", "job", j.name, "trigger", trigger, "took", time.Since(start).Round(time.Millisecond))
	return nil
}
