package history

import (
	"sync"
	"time"

	"reviewdesk/record"
)

// Entry is an immutable audit line for one status transition.
type Entry struct {
	RecordID       string
	PreviousStatus record.Status
	NewStatus      record.Status
	Note           *string
	Timestamp      time.Time
}

// Log is an append-only, process-scoped ledger of status transitions.
// It only takes its own lock and never calls back into the record store.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// NewLog returns an empty ledger.
func NewLog() *Log {
	return &Log{}
}

// Record appends the transition. It never fails: the write that produced the
// event has already committed.
func (l *Log) Record(event record.TransitionEvent) {
	entry := Entry{
		RecordID:       event.RecordID,
		PreviousStatus: event.PreviousStatus,
		NewStatus:      event.NewStatus,
		Timestamp:      event.OccurredAt,
	}
	if event.Note != nil {
		note := *event.Note
		entry.Note = &note
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// List returns the entries oldest first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry. The record store is unaffected.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
