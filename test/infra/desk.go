package infra

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"reviewdesk/history"
	"reviewdesk/record"
	"reviewdesk/review"
	"reviewdesk/seed"
)

// Desk is an in-process review stack: store, history log and service wired
// the way cmd/api wires them.
type Desk struct {
	Store   *record.Store
	History *history.Log
	Service *review.Service
	Ledger  *Ledger
	IDs     []string
}

// StartDesk loads the seed at path (the embedded dataset when empty) and
// builds the stack around it. Logging is discarded unless w is non-nil.
func StartDesk(path string, w io.Writer) (*Desk, error) {
	records, err := seed.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	store, err := record.NewStore(records)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	if w == nil {
		w = io.Discard
	}
	log := history.NewLog()
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ids := make([]string, 0, len(records))
	initial := make(map[string]int, len(records))
	for _, rec := range store.List() {
		ids = append(ids, rec.ID)
		initial[rec.ID] = rec.Version
	}

	return &Desk{
		Store:   store,
		History: log,
		Service: review.NewService(store, log, logger).WithRequiredVersion(true),
		Ledger:  newLedger(initial),
		IDs:     ids,
	}, nil
}

// Ledger counts what actors observed succeeding. Actors record after the
// service returns, so mid-run the store may be ahead of the ledger.
type Ledger struct {
	mu          sync.Mutex
	initial     map[string]int
	writes      map[string]int
	transitions int
	clears      int
}

func newLedger(initial map[string]int) *Ledger {
	return &Ledger{initial: initial, writes: make(map[string]int, len(initial))}
}

// Write records one accepted update; changed reports a status transition.
func (l *Ledger) Write(id string, changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes[id]++
	if changed {
		l.transitions++
	}
}

func (l *Ledger) Cleared() {
	l.mu.Lock()
	l.clears++
	l.mu.Unlock()
}

// Snapshot returns initial versions, accepted writes per record, total transitions and clears.
func (l *Ledger) Snapshot() (initial, writes map[string]int, transitions, clears int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	initial = make(map[string]int, len(l.initial))
	for k, v := range l.initial {
		initial[k] = v
	}
	writes = make(map[string]int, len(l.writes))
	for k, v := range l.writes {
		writes[k] = v
	}
	return initial, writes, l.transitions, l.clears
}
