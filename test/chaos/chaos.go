package chaos

import (
	"context"
	"math/rand"
	"time"

	"reviewdesk/record"
	"reviewdesk/review"
	"reviewdesk/test/infra"
)

// ClearHistory randomly wipes the transition ledger while writers are active.
func ClearHistory(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if rng.Intn(4) == 0 {
				if err := desk.Service.ClearHistory(ctx); err == nil {
					desk.Ledger.Cleared()
				}
			}
		}
	}
}

// AbandonedCalls submits updates on contexts that are already cancelled,
// like a client that went away mid-request. None of them may reach the store.
func AbandonedCalls(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	status := record.StatusFlagged
	note := "abandoned"
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			id := desk.IDs[rng.Intn(len(desk.IDs))]
			current, err := desk.Store.Get(id)
			if err != nil {
				continue
			}
			version := current.Version
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, _ = desk.Service.Update(cctx, review.UpdateRequest{ID: id, Status: &status, Note: &note, Version: &version})
		}
	}
}
