package tasks

import (
	"sync"
	"sync/atomic"
	"time"
)

// IDGenerator mints task identifiers.
type IDGenerator interface {
	NextID() int64
}

// Counter is a monotonic IDGenerator. The zero value starts at 1.
type Counter struct {
	last atomic.Int64
}

// NewCounter returns a Counter whose first id is floor+1.
func NewCounter(floor int64) *Counter {
	c := &Counter{}
	c.last.Store(floor)
	return c
}

// NextID returns the next id.
func (c *Counter) NextID() int64 {
	return c.last.Add(1)
}

// ClockIDs mints ids from wall-clock milliseconds, bumped when the clock
// has not advanced so ids stay strictly increasing.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClockIDs returns a ClockIDs that never issues an id at or below floor.
func NewClockIDs(floor int64) *ClockIDs {
	return &ClockIDs{last: floor, now: time.Now}
}

// NextID returns the current time in milliseconds, or last+1.
func (c *ClockIDs) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
