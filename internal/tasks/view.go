package tasks

import (
	"slices"
	"strings"
)

// Filter keeps tasks whose title or description contains query,
// case-insensitively. An empty query keeps everything.
func Filter(tasks []Task, query string) []Task {
	if query == "" {
		return slices.Clone(tasks)
	}
	q := strings.ToLower(query)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// SortByPriority returns a copy of tasks stably ordered high, medium, low.
func SortByPriority(tasks []Task) []Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return out
}

// IntentKind is a user action on a single list row.
type IntentKind string

const (
	IntentToggle IntentKind = "toggle"
	IntentEdit   IntentKind = "edit"
	IntentDelete IntentKind = "delete"
)

// Intent is an identifier-carrying action emitted by the list view.
type Intent struct {
	Kind IntentKind `json:"kind"`
	ID   int64      `json:"id"`
}

// ListItem is one rendered row of the task list.
type ListItem struct {
	Task          Task   `json:"task"`
	Dimmed        bool   `json:"dimmed"`
	StatusLabel   string `json:"status_label"`
	PriorityLabel string `json:"priority_label"`
}

// Intents returns the three actions available on the row.
func (li ListItem) Intents() []Intent {
	return []Intent{
		{Kind: IntentToggle, ID: li.Task.ID},
		{Kind: IntentEdit, ID: li.Task.ID},
		{Kind: IntentDelete, ID: li.Task.ID},
	}
}

// ListView turns an already sorted and filtered sequence into rows.
func ListView(tasks []Task) []ListItem {
	items := make([]ListItem, len(tasks))
	for i, t := range tasks {
		items[i] = ListItem{
			Task:          t,
			Dimmed:        t.Completed,
			StatusLabel:   t.StatusLabel(),
			PriorityLabel: t.Priority.Label(),
		}
	}
	return items
}
