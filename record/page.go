package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPage is returned when page or limit is not a positive integer.
var ErrInvalidPage = errors.New("record: page and limit must be positive integers")

// PageQuery selects one page of the collection, optionally restricted to a status.
type PageQuery struct {
	Page   int
	Limit  int
	Status *Status
}

// Page is one slice of the collection.
//
// TotalCount is the size of the filtered collection while StatusCounts always
// covers the unfiltered one, so summaries stay global whatever filter is active.
type Page struct {
	Records      []Record
	TotalCount   int
	Page         int
	Limit        int
	StatusCounts StatusCounts
}

// Paginate slices records according to q. It never mutates its input and keeps
// no state between calls. A page past the end yields an empty slice.
func Paginate(records []Record, q PageQuery) (Page, error) {
	if q.Page < 1 || q.Limit < 1 {
		return Page{}, ErrInvalidPage
	}
	if q.Status != nil && !q.Status.Valid() {
		return Page{}, fmt.Errorf("%w %q", ErrInvalidStatus, *q.Status)
	}

	filtered := records
	if q.Status != nil {
		filtered = make([]Record, 0, len(records))
		for _, rec := range records {
			if rec.Status == *q.Status {
				filtered = append(filtered, rec)
			}
		}
	}

	out := Page{
		Records:      []Record{},
		TotalCount:   len(filtered),
		Page:         q.Page,
		Limit:        q.Limit,
		StatusCounts: CountStatuses(records),
	}

	// (page-1)*limit may overflow for absurd inputs; anything past the end is empty.
	if q.Page-1 > len(filtered)/q.Limit {
		return out, nil
	}
	start := (q.Page - 1) * q.Limit
	if start >= len(filtered) {
		return out, nil
	}
	end := len(filtered)
	if q.Limit < end-start {
		end = start + q.Limit
	}

	out.Records = make([]Record, end-start)
	for i, rec := range filtered[start:end] {
		out.Records[i] = rec.clone()
	}
	return out, nil
}

// ParseStatusFilter interprets a status filter value. Empty and "all" mean no filter.
func ParseStatusFilter(raw string) (*Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, raw)
	}
	return &s, nil
}
