package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"reviewdesk/record"
	"reviewdesk/review"
	"reviewdesk/test/infra"
)

func stopped(ctx context.Context, stop <-chan struct{}) (bool, error) {
	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-stop:
		return true, nil
	default:
		return false, nil
	}
}

func pick(rng *rand.Rand, ids []string) string { return ids[rng.Intn(len(ids))] }

// Reviewer reads a record and submits a random transition against the version
// it saw. Losing the race is expected; anything else is a failure.
func Reviewer(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) error {
	for {
		if done, err := stopped(ctx, stop); done {
			return err
		}
		id := pick(rng, desk.IDs)
		current, err := desk.Service.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("reviewer get %s: %w", id, err)
		}
		status := record.Statuses[rng.Intn(len(record.Statuses))]
		note := fmt.Sprintf("reviewed at %s", time.Now().Format(time.RFC3339Nano))
		version := current.Version

		updated, err := desk.Service.Update(ctx, review.UpdateRequest{
			ID:      id,
			Status:  &status,
			Note:    &note,
			Version: &version,
		})
		switch {
		case err == nil:
			if updated.Version != version+1 {
				return fmt.Errorf("reviewer %s: version %d after write on %d", id, updated.Version, version)
			}
			desk.Ledger.Write(id, current.Status != status)
		case errors.Is(err, record.ErrVersionConflict):
			var conflict *record.ConflictError
			if !errors.As(err, &conflict) || conflict.Current.Version <= version {
				return fmt.Errorf("reviewer %s: conflict without newer server record: %v", id, err)
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return fmt.Errorf("reviewer update %s: %w", id, err)
		}
		time.Sleep(time.Duration(1+rng.Intn(5)) * time.Millisecond)
	}
}

// StaleWriter replays a version that is known to be outdated. It must never win.
func StaleWriter(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) error {
	for {
		if done, err := stopped(ctx, stop); done {
			return err
		}
		id := pick(rng, desk.IDs)
		current, err := desk.Service.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("stale get %s: %w", id, err)
		}
		if current.Version < 2 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		stale := current.Version - 1
		status := record.StatusApproved
		_, err = desk.Service.Update(ctx, review.UpdateRequest{ID: id, Status: &status, Version: &stale})
		switch {
		case err == nil:
			return fmt.Errorf("stale write on %s with version %d was accepted", id, stale)
		case errors.Is(err, record.ErrVersionConflict),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		default:
			return fmt.Errorf("stale update %s: %w", id, err)
		}
		time.Sleep(time.Duration(5+rng.Intn(10)) * time.Millisecond)
	}
}

// NoteBlanker tries to erase the note of records that require one.
func NoteBlanker(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) error {
	empty := ""
	for {
		if done, err := stopped(ctx, stop); done {
			return err
		}
		id := pick(rng, desk.IDs)
		current, err := desk.Service.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("blanker get %s: %w", id, err)
		}
		if !current.Status.RequiresNote() {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		version := current.Version
		_, err = desk.Service.Update(ctx, review.UpdateRequest{ID: id, Note: &empty, Version: &version})
		var validation *review.ValidationError
		switch {
		case err == nil:
			return fmt.Errorf("blanked note on %s record %s", current.Status, id)
		case errors.As(err, &validation), errors.Is(err, record.ErrVersionConflict),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		default:
			return fmt.Errorf("blanker update %s: %w", id, err)
		}
		time.Sleep(time.Duration(5+rng.Intn(10)) * time.Millisecond)
	}
}

// Pager walks random pages with random filters and checks each page is
// internally consistent.
func Pager(ctx context.Context, desk *infra.Desk, rng *rand.Rand, stop <-chan struct{}) error {
	filters := append([]record.Status{""}, record.Statuses...)
	for {
		if done, err := stopped(ctx, stop); done {
			return err
		}
		q := record.PageQuery{Page: 1 + rng.Intn(4), Limit: 1 + rng.Intn(6)}
		if f := filters[rng.Intn(len(filters))]; f != "" {
			q.Status = &f
		}
		page, err := desk.Service.Page(ctx, q)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("pager: %w", err)
		}
		sum := 0
		for _, n := range page.StatusCounts {
			sum += n
		}
		if sum != len(desk.IDs) {
			return fmt.Errorf("pager: status counts sum to %d, collection has %d", sum, len(desk.IDs))
		}
		if len(page.Records) > q.Limit {
			return fmt.Errorf("pager: %d records on a page of %d", len(page.Records), q.Limit)
		}
		for _, rec := range page.Records {
			if q.Status != nil && rec.Status != *q.Status {
				return fmt.Errorf("pager: %s record %s under %s filter", rec.Status, rec.ID, *q.Status)
			}
		}
		if q.Status != nil && page.TotalCount != page.StatusCounts[*q.Status] {
			return fmt.Errorf("pager: filtered total %d disagrees with count %d", page.TotalCount, page.StatusCounts[*q.Status])
		}
		time.Sleep(time.Duration(2+rng.Intn(8)) * time.Millisecond)
	}
}
