package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reviewdesk/history"
	"reviewdesk/record"
)

var (
	// ErrMalformed signals a request that cannot be interpreted (missing id, unknown status).
	ErrMalformed = errors.New("review: malformed request")
	// ErrVersionRequired is returned when unversioned writes are disabled.
	ErrVersionRequired = errors.New("review: version is required")
)

// ValidationError reports a submission rejected by the note policy before it
// reached the store.
type ValidationError struct {
	Status record.Status
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("review: note is required when status is %s", e.Status)
}

// RecordStore abstracts the record store for the service.
type RecordStore interface {
	Get(id string) (record.Record, error)
	List() []record.Record
	Update(id string, patch record.Patch, guard record.Guard) (record.Record, *record.TransitionEvent, error)
}

// HistoryLog abstracts the transition ledger.
type HistoryLog interface {
	Record(event record.TransitionEvent)
	List() []history.Entry
	Clear()
}

// UpdateRequest is a partial update submitted by a client.
type UpdateRequest struct {
	ID      string
	Status  *record.Status
	Note    *string
	Version *int
}

// Service is the single entry point used by the transport layer. It validates
// submissions, delegates reads to the pagination engine and writes to the
// store, and forwards transition events to the history log.
type Service struct {
	store          RecordStore
	history        HistoryLog
	logger         *slog.Logger
	requireVersion bool
}

func NewService(store RecordStore, log HistoryLog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		history: log,
		logger:  logger,
	}
}

// WithRequiredVersion rejects writes that omit the expected version.
func (s *Service) WithRequiredVersion(required bool) *Service {
	s.requireVersion = required
	return s
}

// List returns the whole unfiltered collection.
func (s *Service) List(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(), nil
}

// Page returns one page of the collection.
func (s *Service) Page(ctx context.Context, q record.PageQuery) (record.Page, error) {
	if err := ctx.Err(); err != nil {
		return record.Page{}, err
	}
	return record.Paginate(s.store.List(), q)
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	return s.store.Get(id)
}

// Update validates req and applies it to the store.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return record.Record{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if req.Status != nil && !req.Status.Valid() {
		return record.Record{}, fmt.Errorf("%w: unknown status %q", ErrMalformed, *req.Status)
	}
	if req.Status != nil && req.Status.RequiresNote() && blank(req.Note) {
		return record.Record{}, &ValidationError{Status: *req.Status}
	}
	if req.Version == nil {
		if s.requireVersion {
			return record.Record{}, ErrVersionRequired
		}
		s.logger.Warn("unversioned update bypasses conflict detection", "record_id", req.ID)
	}

	patch := record.Patch{
		Status:          req.Status,
		Note:            req.Note,
		ExpectedVersion: req.Version,
	}
	updated, event, err := s.store.Update(req.ID, patch, requireNote)
	if err != nil {
		var conflict *record.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("version conflict",
				"record_id", req.ID,
				"expected_version", conflict.Expected,
				"current_version", conflict.Current.Version,
			)
		}
		return record.Record{}, err
	}

	if event != nil && s.history != nil {
		s.history.Record(*event)
	}

	s.logger.Debug("record updated", "record_id", updated.ID, "status", updated.Status, "version", updated.Version)
	return updated, nil
}

// History returns the transition ledger oldest first.
func (s *Service) History(ctx context.Context) ([]history.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []history.Entry{}, nil
	}
	return s.history.List(), nil
}

// ClearHistory empties the ledger. Records are not touched.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.history != nil {
		s.history.Clear()
	}
	s.logger.Info("history cleared")
	return nil
}

// requireNote re-applies the note policy to the resulting record inside the
// store's critical section, so a note-only patch cannot blank a flagged record.
func requireNote(next record.Record) error {
	if next.Status.RequiresNote() && blank(next.Note) {
		return &ValidationError{Status: next.Status}
	}
	return nil
}

func blank(note *string) bool {
	return note == nil || strings.TrimSpace(*note) == ""
}
