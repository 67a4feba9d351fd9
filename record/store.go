package record

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for the provided identifier.
	ErrNotFound = errors.New("record: not found")
	// ErrVersionConflict signals the caller wrote against a stale version.
	ErrVersionConflict = errors.New("record: version conflict")
	// ErrDuplicateID is returned by NewStore when two records share an id.
	ErrDuplicateID = errors.New("record: duplicate id")
	// ErrInvalidStatus signals a status outside the closed set.
	ErrInvalidStatus = errors.New("record: invalid status")
)

// ConflictError carries the server-side record observed by a rejected write so
// the caller can reconcile without a second read.
type ConflictError struct {
	Current  Record
	Expected int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("record: version conflict on %s (expected %d, current %d)", e.Current.ID, e.Expected, e.Current.Version)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// Guard inspects the would-be next state of a record inside the write critical
// section. A non-nil error aborts the update before anything is mutated.
type Guard func(next Record) error

// Store owns the canonical record collection. All mutations go through Update,
// which performs the version check and the increment under one write lock.
type Store struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
	now     func() time.Time
}

// NewStore builds a store seeded with records in the given order.
func NewStore(records []Record) (*Store, error) {
	s := &Store{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
		now:     time.Now,
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("record: seed entry missing id")
		}
		if _, exists := s.index[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		if !rec.Status.Valid() {
			return nil, fmt.Errorf("%w %q for record %s", ErrInvalidStatus, rec.Status, rec.ID)
		}
		if rec.Version < 0 {
			return nil, fmt.Errorf("record: negative version for record %s", rec.ID)
		}
		if rec.Version == 0 {
			rec.Version = 1
		}
		s.index[rec.ID] = len(s.records)
		s.records = append(s.records, rec.clone())
	}
	return s, nil
}

// WithClock overrides the clock used to stamp transition events.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return s.records[i].clone(), nil
}

// List returns a copy of every record in insertion order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.clone()
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Counts aggregates the whole collection by status.
func (s *Store) Counts() StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountStatuses(s.records)
}

// Update applies patch to the record with the given id.
//
// When patch.ExpectedVersion is nil the write is unconditional and conflict
// detection is bypassed. Callers should always send the version they read.
//
// The returned event is non-nil only when the write changed the status.
func (s *Store) Update(id string, patch Patch, guard Guard) (Record, *TransitionEvent, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return Record{}, nil, fmt.Errorf("%w %q", ErrInvalidStatus, *patch.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Record{}, nil, ErrNotFound
	}
	current := s.records[i]

	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != current.Version {
		return Record{}, nil, &ConflictError{Current: current.clone(), Expected: *patch.ExpectedVersion}
	}

	next := current.clone()
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Note != nil {
		note := *patch.Note
		next.Note = &note
	}
	next.Version = current.Version + 1

	if guard != nil {
		if err := guard(next.clone()); err != nil {
			return Record{}, nil, err
		}
	}

	s.records[i] = next

	var event *TransitionEvent
	if next.Status != current.Status {
		event = &TransitionEvent{
			RecordID:       id,
			PreviousStatus: current.Status,
			NewStatus:      next.Status,
			Version:        next.Version,
			OccurredAt:     s.now().UTC(),
		}
		if patch.Note != nil {
			note := *patch.Note
			event.Note = &note
		}
	}

	return next.clone(), event, nil
}
