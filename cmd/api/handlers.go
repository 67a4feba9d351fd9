package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reviewdesk/history"
	"reviewdesk/record"
	"reviewdesk/review"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxBodyBytes = 1 << 20

	msgInvalidRequest = "Invalid request"
	msgInvalidPage    = "page and limit must be positive integers"
	msgConflict       = "This record has been modified by another user. Please refresh and try again."
)

type recordResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Note        *string `json:"note,omitempty"`
	Version     int     `json:"version"`
}

type statusCountsResponse struct {
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Flagged       int `json:"flagged"`
	NeedsRevision int `json:"needs_revision"`
}

type pageResponse struct {
	Records      []recordResponse     `json:"records"`
	TotalCount   int                  `json:"totalCount"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
	StatusCounts statusCountsResponse `json:"statusCounts"`
}

type historyEntryResponse struct {
	ID             string  `json:"id"`
	PreviousStatus string  `json:"previousStatus"`
	NewStatus      string  `json:"newStatus"`
	Note           *string `json:"note,omitempty"`
	Timestamp      string  `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type conflictResponse struct {
	Error        string         `json:"error"`
	Message      string         `json:"message"`
	ServerRecord recordResponse `json:"serverRecord"`
}

// recordID accepts both "1" and 1 on the wire.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = recordID(n.String())
	return nil
}

type updateRecordRequest struct {
	ID      recordID `json:"id"`
	Status  *string  `json:"status"`
	Note    *string  `json:"note"`
	Version *int     `json:"version"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPatch:
		s.handleUpdateRecord(w, r)
	default:
		w.Header().Set("Allow", "GET, PATCH")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("page") && !query.Has("limit") && !query.Has("status") {
		records, err := s.recordService.List(r.Context())
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		items := make([]recordResponse, 0, len(records))
		for _, rec := range records {
			items = append(items, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	page, ok := parsePositive(query.Get("page"), defaultPage)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidPage)
		return
	}
	limit, ok := parsePositive(query.Get("limit"), defaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidPage)
		return
	}
	status, err := record.ParseStatusFilter(query.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	result, err := s.recordService.Page(r.Context(), record.PageQuery{Page: page, Limit: limit, Status: status})
	if err != nil {
		switch {
		case errors.Is(err, record.ErrInvalidPage):
			writeError(w, http.StatusBadRequest, msgInvalidPage)
		case errors.Is(err, record.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status filter")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	resp := pageResponse{
		Records:    make([]recordResponse, 0, len(result.Records)),
		TotalCount: result.TotalCount,
		Page:       result.Page,
		Limit:      result.Limit,
		StatusCounts: statusCountsResponse{
			Pending:       result.StatusCounts[record.StatusPending],
			Approved:      result.StatusCounts[record.StatusApproved],
			Flagged:       result.StatusCounts[record.StatusFlagged],
			NeedsRevision: result.StatusCounts[record.StatusNeedsRevision],
		},
	}
	for _, rec := range result.Records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var body updateRecordRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	req := review.UpdateRequest{
		ID:      string(body.ID),
		Note:    body.Note,
		Version: body.Version,
	}
	if body.Status != nil && *body.Status != "" {
		status := record.Status(*body.Status)
		req.Status = &status
	}

	updated, err := s.recordService.Update(r.Context(), req)
	if err != nil {
		var (
			conflict   *record.ConflictError
			validation *review.ValidationError
		)
		switch {
		case errors.As(err, &conflict):
			writeJSON(w, http.StatusConflict, conflictResponse{
				Error:        "version_conflict",
				Message:      msgConflict,
				ServerRecord: toRecordResponse(conflict.Current),
			})
		case errors.Is(err, record.ErrNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("Record with id %s not found.", req.ID))
		case errors.As(err, &validation):
			writeError(w, http.StatusBadRequest, "note is required when status is flagged or needs_revision")
		case errors.Is(err, review.ErrVersionRequired):
			writeError(w, http.StatusPreconditionRequired, "version is required")
		case errors.Is(err, review.ErrMalformed), errors.Is(err, record.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, msgInvalidRequest)
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(updated))
}

func (s *Server) handleRecordDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/records/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	rec, err := s.recordService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Record with id %s not found.", id))
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.recordService.History(r.Context())
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		items := make([]historyEntryResponse, 0, len(entries))
		for _, e := range entries {
			items = append(items, toHistoryEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	case http.MethodDelete:
		if err := s.recordService.ClearHistory(r.Context()); err != nil {
			s.internalError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("client went away",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID(r.Context()),
		)
		return
	}
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r.Context()),
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parsePositive(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func toRecordResponse(rec record.Record) recordResponse {
	return recordResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Status:      string(rec.Status),
		Description: rec.Description,
		Note:        rec.Note,
		Version:     rec.Version,
	}
}

func toHistoryEntryResponse(e history.Entry) historyEntryResponse {
	return historyEntryResponse{
		ID:             e.RecordID,
		PreviousStatus: string(e.PreviousStatus),
		NewStatus:      string(e.NewStatus),
		Note:           e.Note,
		Timestamp:      e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
