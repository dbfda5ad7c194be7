// Package tasks holds the task collection, its derived views and the page-level
// board that wires them together.
package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns the sort rank of the priority (high=1, medium=2, low=3).
// Unknown values rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// Label returns the capitalized priority, e.g. "High".
func (p Priority) Label() string {
	s := string(p)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Next cycles high -> medium -> low -> high.
func (p Priority) Next() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a titled, described, prioritized, completable unit of work.
type Task struct {
	ID          int64    `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Priority    Priority `json:"priority" yaml:"priority" toml:"priority"`
	Completed   bool     `json:"completed" yaml:"completed" toml:"completed"`
}

// StatusLabel is the completion label shown next to a task.
func (t Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Incomplete"
}

// Seed returns the fixed fallback task list used when nothing valid is persisted.
func Seed() []Task {
	return []Task{
		{ID: 1, Title: "Study", Description: "Module 1 need to be completed", Priority: PriorityMedium},
		{ID: 2, Title: "Complete Assignment", Description: "Finish NextJS project", Priority: PriorityHigh},
		{ID: 3, Title: "Go for a walk", Description: "30-minute walk in the park", Priority: PriorityLow},
	}
}

// MaxID returns the largest id in tasks, or 0.
func MaxID(tasks []Task) int64 {
	var max int64
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}
