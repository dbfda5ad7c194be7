package scheduler

import (
	"slices"

	"github.com/dohr-michael/taskboard/internal/events"
)

// MatchEvent reports whether e should fire a job listening for types.
// Events emitted by the scheduler itself never match, so a job can't
// retrigger itself.
func MatchEvent(e events.Event, types []events.EventType) bool {
	if e.Source == events.SourceCron {
		return false
	}
	return slices.Contains(types, e.Type)
}
