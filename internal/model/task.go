package model

import "time"

// Task status values. A task normally moves pending -> completed exactly
// once; a stale remote pull can revert it because pulls overwrite the full
// document.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// ChecklistItem is a single inspection point inside a task.
type ChecklistItem struct {
	// ID is the unique identifier for this item.
	ID string `json:"id"`

	// Text is the short instruction shown to the employee.
	Text string `json:"text"`

	// Completed reports whether the employee has checked this item off.
	Completed bool `json:"completed"`
}

// Task is one unit of assigned work: an area to handle, a checklist to work
// through, and photo evidence to attach.
//
// JSON field names and epoch-millisecond timestamps are the wire format of
// the shared remote document and of transfer tokens, so they must not change
// between releases.
type Task struct {
	// ID is the unique identifier, immutable after creation.
	ID string `json:"id"`

	// AssigneeName is the employee's display name. Matching is by exact
	// string equality, not by reference to an employee record.
	AssigneeName string `json:"assigneeName"`

	// AreaName is the free-text label of the place to be worked.
	AreaName string `json:"areaName"`

	// Checklist holds the inspection points in display order.
	Checklist []ChecklistItem `json:"checklist"`

	// Status is StatusPending or StatusCompleted.
	Status string `json:"status"`

	// Photos holds uploaded photo URLs, or inline-encoded images while an
	// upload is still in flight. Cardinality is a UI concern only.
	Photos []string `json:"photos"`

	// CreatedAt is the creation time in epoch milliseconds (client clock).
	CreatedAt int64 `json:"createdAt"`

	// CompletedAt is set exactly once, when Status becomes completed.
	CompletedAt int64 `json:"completedAt,omitempty"`

	// StartDate and DueDate are optional scheduling bounds in epoch
	// milliseconds. DueDate is end-of-day when derived from a date-only
	// input.
	StartDate int64 `json:"startDate,omitempty"`
	DueDate   int64 `json:"dueDate,omitempty"`
}

// CompletedChecklistCount returns the number of checked-off items.
func (t Task) CompletedChecklistCount() int {
	n := 0
	for _, item := range t.Checklist {
		if item.Completed {
			n++
		}
	}
	return n
}

// Announcement is a broadcast message from the supervisor. The list is
// append-only and kept newest-first at insert time.
type Announcement struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// EndOfDay converts a date-only input to the last millisecond of that day in
// its own timezone, the convention used for due dates.
func EndOfDay(t time.Time) int64 {
	y, m, d := t.Date()
	end := time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
	return end.UnixMilli()
}

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
