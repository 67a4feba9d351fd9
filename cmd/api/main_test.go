package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewdesk/config"
	"reviewdesk/history"
	"reviewdesk/record"
	"reviewdesk/review"
	"reviewdesk/seed"
)

type stubRecordService struct {
	listRecords  []record.Record
	listErr      error
	page         record.Page
	pageErr      error
	pageQuery    record.PageQuery
	getRecord    record.Record
	getErr       error
	updateRecord record.Record
	updateErr    error
	updateReq    review.UpdateRequest
	entries      []history.Entry
	historyErr   error
	cleared      bool
}

func (s *stubRecordService) List(_ context.Context) ([]record.Record, error) {
	return s.listRecords, s.listErr
}

func (s *stubRecordService) Page(_ context.Context, q record.PageQuery) (record.Page, error) {
	s.pageQuery = q
	return s.page, s.pageErr
}

func (s *stubRecordService) Get(_ context.Context, _ string) (record.Record, error) {
	return s.getRecord, s.getErr
}

func (s *stubRecordService) Update(_ context.Context, req review.UpdateRequest) (record.Record, error) {
	s.updateReq = req
	return s.updateRecord, s.updateErr
}

func (s *stubRecordService) History(_ context.Context) ([]history.Entry, error) {
	return s.entries, s.historyErr
}

func (s *stubRecordService) ClearHistory(_ context.Context) error {
	s.cleared = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(svc recordService) *Server {
	return &Server{recordService: svc, logger: quietLogger()}
}

func TestHandleRecords_ListAllWithoutQuery(t *testing.T) {
	note := "confirmed"
	server := newTestServer(&stubRecordService{
		listRecords: []record.Record{
			{ID: "1", Name: "Anopheles gambiae", Status: record.StatusPending, Version: 1},
			{ID: "2", Name: "Anopheles funestus", Status: record.StatusApproved, Note: &note, Version: 3},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var items []recordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 || items[1].ID != "2" || items[1].Version != 3 {
		t.Fatalf("unexpected payload: %+v", items)
	}
	if items[0].Note != nil {
		t.Fatalf("expected note to be omitted, got %q", *items[0].Note)
	}
}

func TestHandleRecords_Paginated(t *testing.T) {
	stub := &stubRecordService{
		page: record.Page{
			Records:    []record.Record{{ID: "3", Status: record.StatusFlagged, Version: 1}},
			TotalCount: 3,
			Page:       2,
			Limit:      1,
			StatusCounts: record.StatusCounts{
				record.StatusPending:       4,
				record.StatusApproved:      3,
				record.StatusFlagged:       3,
				record.StatusNeedsRevision: 2,
			},
		},
	}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/records?page=2&limit=1&status=flagged", nil)
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if stub.pageQuery.Page != 2 || stub.pageQuery.Limit != 1 || stub.pageQuery.Status == nil || *stub.pageQuery.Status != record.StatusFlagged {
		t.Fatalf("unexpected page query: %+v", stub.pageQuery)
	}

	var resp pageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 3 || resp.Page != 2 || resp.Limit != 1 || len(resp.Records) != 1 {
		t.Fatalf("unexpected page payload: %+v", resp)
	}
	if resp.StatusCounts.Pending != 4 || resp.StatusCounts.NeedsRevision != 2 {
		t.Fatalf("unexpected status counts: %+v", resp.StatusCounts)
	}
}

func TestHandleRecords_PageDefaults(t *testing.T) {
	stub := &stubRecordService{}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/records?limit=5", nil)
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.pageQuery.Page != 1 || stub.pageQuery.Limit != 5 {
		t.Fatalf("expected page 1 limit 5, got %+v", stub.pageQuery)
	}

	req = httptest.NewRequest(http.MethodGet, "/records?status=all", nil)
	rec = httptest.NewRecorder()
	server.handleRecords(rec, req)
	if stub.pageQuery.Page != 1 || stub.pageQuery.Limit != 10 || stub.pageQuery.Status != nil {
		t.Fatalf("expected defaults without filter, got %+v", stub.pageQuery)
	}
}

func TestHandleRecords_InvalidPagination(t *testing.T) {
	server := newTestServer(&stubRecordService{})

	for _, q := range []string{"page=0&limit=5", "page=1&limit=0", "page=-2&limit=5", "page=abc&limit=5", "page=1&limit=1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/records?"+q, nil)
		rec := httptest.NewRecorder()

		server.handleRecords(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error != "page and limit must be positive integers" {
			t.Fatalf("%s: unexpected error %q", q, resp.Error)
		}
	}
}

func TestHandleRecords_InvalidStatusFilter(t *testing.T) {
	server := newTestServer(&stubRecordService{})

	req := httptest.NewRequest(http.MethodGet, "/records?page=1&limit=5&status=archived", nil)
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRecords_WrongMethod(t *testing.T) {
	server := newTestServer(&stubRecordService{})

	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandleUpdateRecord_Success(t *testing.T) {
	stub := &stubRecordService{
		updateRecord: record.Record{ID: "1", Status: record.StatusApproved, Version: 2},
	}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPatch, "/records", strings.NewReader(`{"id":"1","status":"approved","version":1}`))
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.updateReq.ID != "1" || stub.updateReq.Status == nil || *stub.updateReq.Status != record.StatusApproved {
		t.Fatalf("unexpected update request: %+v", stub.updateReq)
	}
	if stub.updateReq.Version == nil || *stub.updateReq.Version != 1 {
		t.Fatalf("expected version 1 forwarded, got %+v", stub.updateReq.Version)
	}
	if stub.updateReq.Note != nil {
		t.Fatalf("absent note must stay nil")
	}

	var resp recordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version != 2 || resp.Status != "approved" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestHandleUpdateRecord_NumericIDAndEmptyNote(t *testing.T) {
	stub := &stubRecordService{updateRecord: record.Record{ID: "7", Status: record.StatusPending, Version: 2}}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPatch, "/records", strings.NewReader(`{"id":7,"note":""}`))
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.updateReq.ID != "7" {
		t.Fatalf("expected id 7, got %q", stub.updateReq.ID)
	}
	if stub.updateReq.Note == nil || *stub.updateReq.Note != "" {
		t.Fatalf("explicit empty note must be forwarded")
	}
}

func TestHandleUpdateRecord_Conflict(t *testing.T) {
	stub := &stubRecordService{
		updateErr: &record.ConflictError{
			Current:  record.Record{ID: "1", Status: record.StatusApproved, Version: 2},
			Expected: 1,
		},
	}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPatch, "/records", strings.NewReader(`{"id":"1","status":"flagged","note":"x","version":1}`))
	rec := httptest.NewRecorder()

	server.handleRecords(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp conflictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "version_conflict" || resp.Message == "" || resp.ServerRecord.Version != 2 {
		t.Fatalf("unexpected conflict payload: %+v", resp)
	}
}

func TestHandleUpdateRecord_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", record.ErrNotFound, http.StatusNotFound, "Record with id 9 not found."},
		{"validation", &review.ValidationError{Status: record.StatusFlagged}, http.StatusBadRequest, "note is required when status is flagged or needs_revision"},
		{"malformed", fmt.Errorf("%w: missing id", review.ErrMalformed), http.StatusBadRequest, "Invalid request"},
		{"version required", review.ErrVersionRequired, http.StatusPreconditionRequired, "version is required"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(&stubRecordService{updateErr: tc.err})

			req := httptest.NewRequest(http.MethodPatch, "/records", strings.NewReader(`{"id":"9","status":"flagged"}`))
			rec := httptest.NewRecorder()

			server.handleRecords(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, resp.Error)
			}
		})
	}
}

func TestHandleUpdateRecord_MalformedBody(t *testing.T) {
	server := newTestServer(&stubRecordService{})

	for _, body := range []string{
		`{`,
		`not json`,
		`{"id":true}`,
		`{"id":"1","version":"two"}`,
		`{"id":"1","status":"approved","version":1} garbage`,
		`{"id":"1","status":"approved","version":1}{"id":"2"}`,
	} {
		req := httptest.NewRequest(http.MethodPatch, "/records", strings.NewReader(body))
		rec := httptest.NewRecorder()

		server.handleRecords(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error != "Invalid request" {
			t.Fatalf("%s: unexpected error %q", body, resp.Error)
		}
	}
}

func TestHandleRecordDetail(t *testing.T) {
	server := newTestServer(&stubRecordService{getRecord: record.Record{ID: "5", Status: record.StatusApproved, Version: 4}})

	req := httptest.NewRequest(http.MethodGet, "/records/5", nil)
	rec := httptest.NewRecorder()
	server.handleRecordDetail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	server = newTestServer(&stubRecordService{getErr: record.ErrNotFound})
	req = httptest.NewRequest(http.MethodGet, "/records/404", nil)
	rec = httptest.NewRecorder()
	server.handleRecordDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/records/", nil)
	rec = httptest.NewRecorder()
	server.handleRecordDetail(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	note := "wing damaged"
	at := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)
	stub := &stubRecordService{
		entries: []history.Entry{
			{RecordID: "7", PreviousStatus: record.StatusPending, NewStatus: record.StatusFlagged, Note: &note, Timestamp: at},
		},
	}
	server := newTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	server.handleHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Items []historyEntryResponse `json:"items"`
		Total int                    `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 1 || payload.Items[0].ID != "7" || payload.Items[0].NewStatus != "flagged" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Items[0].Timestamp != at.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected timestamp %s", payload.Items[0].Timestamp)
	}

	req = httptest.NewRequest(http.MethodDelete, "/history", nil)
	rec = httptest.NewRecorder()
	server.handleHistory(rec, req)
	if rec.Code != http.StatusNoContent || !stub.cleared {
		t.Fatalf("expected 204 and cleared ledger, got %d cleared=%v", rec.Code, stub.cleared)
	}

	req = httptest.NewRequest(http.MethodPut, "/history", nil)
	rec = httptest.NewRecorder()
	server.handleHistory(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := newTestServer(&stubRecordService{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	generated := rec.Header().Get(headerRequestID)
	if generated == "" {
		t.Fatalf("expected generated request id")
	}

	const supplied = "6f1c2a8e-4b7d-4c1e-9a3f-2d5e8b7c9a10"
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, supplied)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != supplied {
		t.Fatalf("expected echoed request id %s, got %s", supplied, got)
	}
}

// End-to-end over the real store, history log and pagination engine.

func newLiveHandler(t *testing.T) http.Handler {
	t.Helper()
	records, err := seed.Default()
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	store, err := record.NewStore(records)
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	svc := review.NewService(store, history.NewLog(), quietLogger())
	return NewServer(svc, quietLogger()).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLive_ConflictScenario(t *testing.T) {
	h := newLiveHandler(t)

	rec := do(t, h, http.MethodPatch, "/records", `{"id":"1","status":"approved","version":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated recordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != "approved" || updated.Version != 2 {
		t.Fatalf("unexpected record after update: %+v", updated)
	}

	rec = do(t, h, http.MethodPatch, "/records", `{"id":"1","status":"flagged","note":"late reviewer","version":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("stale patch: expected 409, got %d", rec.Code)
	}
	var conflict conflictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conflict.ServerRecord.Version != 2 || conflict.ServerRecord.Status != "approved" {
		t.Fatalf("unexpected server record: %+v", conflict.ServerRecord)
	}

	rec = do(t, h, http.MethodGet, "/history", "")
	var payload struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 {
		t.Fatalf("expected one history entry, got %d", payload.Total)
	}
}

func TestLive_PaginationScenario(t *testing.T) {
	h := newLiveHandler(t)

	rec := do(t, h, http.MethodGet, "/records?page=1&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page pageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalCount != 12 || len(page.Records) != 5 || page.Page != 1 {
		t.Fatalf("unexpected page: total=%d len=%d page=%d", page.TotalCount, len(page.Records), page.Page)
	}

	rec = do(t, h, http.MethodGet, "/records?page=9&limit=5", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || len(page.Records) != 0 || page.TotalCount != 12 {
		t.Fatalf("expected empty page with total 12, got %d %+v", rec.Code, page)
	}

	rec = do(t, h, http.MethodGet, "/records?page=1&limit=5&status=flagged", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalCount != 3 || page.StatusCounts.Approved != 4 || page.StatusCounts.Pending != 3 {
		t.Fatalf("filtered page must keep global counts: %+v", page)
	}
}

func TestLive_RequiredNoteLeavesVersion(t *testing.T) {
	h := newLiveHandler(t)

	rec := do(t, h, http.MethodPatch, "/records", `{"id":"6","status":"needs_revision","note":"   ","version":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/records/6", "")
	var got recordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Version != 1 || got.Status != "pending" {
		t.Fatalf("rejected write changed state: %+v", got)
	}
}

func TestLive_TrailingDataLeavesRecordUntouched(t *testing.T) {
	h := newLiveHandler(t)

	for _, body := range []string{
		`{"id":"1","status":"approved","version":1} garbage`,
		`{"id":"1","status":"approved","version":1}{"id":"2"}`,
	} {
		rec := do(t, h, http.MethodPatch, "/records", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/records/1", "")
	var got recordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Version != 1 || got.Status != "pending" {
		t.Fatalf("rejected body changed state: %+v", got)
	}

	rec = do(t, h, http.MethodPatch, "/records", "{\"id\":\"1\",\"status\":\"approved\",\"version\":1}\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("trailing newline must be accepted, got %d", rec.Code)
	}
}

func TestHandleRecords_ClientGoneIsNotAServerError(t *testing.T) {
	var logs bytes.Buffer
	server := &Server{
		recordService: &stubRecordService{listErr: context.Canceled, historyErr: fmt.Errorf("history: %w", context.Canceled)},
		logger:        slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	for _, target := range []string{"/records", "/history"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		if target == "/records" {
			server.handleRecords(rec, req)
		} else {
			server.handleHistory(rec, req)
		}

		if rec.Code == http.StatusInternalServerError || rec.Body.Len() != 0 {
			t.Fatalf("%s: expected no response for a cancelled request, got %d %s", target, rec.Code, rec.Body.String())
		}
	}
	if strings.Contains(logs.String(), "level=ERROR") {
		t.Fatalf("cancelled requests must not log at error level: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "client went away") {
		t.Fatalf("expected debug line for cancelled request: %s", logs.String())
	}
}

func TestHandleRecords_UnexpectedErrorIs500(t *testing.T) {
	server := newTestServer(&stubRecordService{listErr: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	rec := httptest.NewRecorder()
	server.handleRecords(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLive_NotFoundMessage(t *testing.T) {
	h := newLiveHandler(t)

	rec := do(t, h, http.MethodPatch, "/records", `{"id":"99","status":"approved"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Record with id 99 not found." {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected json output, got %s", out)
	}

	buf.Reset()
	logger = newLogger(config.LogConfig{Level: "error", Format: "text"}, true, &buf)
	logger.Debug("verbose wins")
	if !strings.Contains(buf.String(), "verbose wins") {
		t.Fatalf("verbose should force debug: %s", buf.String())
	}
}

func TestSeedCheckCommand(t *testing.T) {
	var out bytes.Buffer
	seedCheckCmd.SetOut(&out)
	defer seedCheckCmd.SetOut(nil)

	if err := seedCheckCmd.RunE(seedCheckCmd, nil); err != nil {
		t.Fatalf("seed check: %v", err)
	}
	if !strings.HasPrefix(out.String(), "12 records") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
