package record

import "time"

// Status is the review state of a record.
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusFlagged       Status = "flagged"
	StatusNeedsRevision Status = "needs_revision"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusFlagged, StatusNeedsRevision}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusFlagged, StatusNeedsRevision:
		return true
	default:
		return false
	}
}

// RequiresNote reports whether a record in this status must carry a reviewer note.
func (s Status) RequiresNote() bool {
	return s == StatusFlagged || s == StatusNeedsRevision
}

// Record is a reviewable unit. Like the other domain types it carries no JSON
// tags; the transport layer owns the wire shape.
type Record struct {
	ID          string
	Name        string
	Description string
	Status      Status
	Note        *string
	Version     int
}

func (r Record) clone() Record {
	if r.Note != nil {
		note := *r.Note
		r.Note = &note
	}
	return r
}

// Patch describes a partial update. Nil fields are left untouched; a non-nil
// Note pointing at "" clears the note.
type Patch struct {
	Status          *Status
	Note            *string
	ExpectedVersion *int
}

// TransitionEvent is emitted for every successful write that changes status.
type TransitionEvent struct {
	RecordID       string
	PreviousStatus Status
	NewStatus      Status
	Note           *string
	Version        int
	OccurredAt     time.Time
}

// StatusCounts maps every status to the number of records in it.
type StatusCounts map[Status]int

func newStatusCounts() StatusCounts {
	counts := make(StatusCounts, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	return counts
}

// CountStatuses aggregates records by status. Every status key is present.
func CountStatuses(records []Record) StatusCounts {
	counts := newStatusCounts()
	for _, rec := range records {
		counts[rec.Status]++
	}
	return counts
}
