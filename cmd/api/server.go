package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"reviewdesk/history"
	"reviewdesk/record"
	"reviewdesk/review"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"

	headerRequestID = "X-Request-ID"
)

// recordService is the subset of review.Service the handlers depend on.
type recordService interface {
	List(ctx context.Context) ([]record.Record, error)
	Page(ctx context.Context, q record.PageQuery) (record.Page, error)
	Get(ctx context.Context, id string) (record.Record, error)
	Update(ctx context.Context, req review.UpdateRequest) (record.Record, error)
	History(ctx context.Context) ([]history.Entry, error)
	ClearHistory(ctx context.Context) error
}

// Server wires the HTTP surface onto the review service.
type Server struct {
	recordService recordService
	logger        *slog.Logger
}

func NewServer(svc recordService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{recordService: svc, logger: logger}
}

// Handler returns the routed handler wrapped in request-id and access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/records", s.handleRecords)
	mux.HandleFunc("/records/", s.handleRecordDetail)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/healthz", s.handleHealth)
	return s.withRequestID(s.withAccessLog(mux))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestID(r.Context()),
		)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
