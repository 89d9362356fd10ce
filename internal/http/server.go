// Package http exposes the dashboard API: one import endpoint and a
// GET endpoint per aggregation view. Responses are JSON chart payloads;
// rendering is the client's concern.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/services"
	"findash/internal/storage"
)

// TransactionStore is the query side the report handlers need.
type TransactionStore interface {
	Query(ctx context.Context, dr core.DateRange, f storage.Filter) ([]core.Transaction, error)
}

// Importer runs the full-refresh import pipeline.
type Importer interface {
	Run(ctx context.Context) (services.ImportResult, error)
}

// ImportPublisher enqueues an import request for the worker instead of
// running it inline.
type ImportPublisher interface {
	PublishImportRequest(ctx context.Context, msg *amqp.ImportRequestMessage) error
}

// Options carries the report-level configuration into the handlers.
type Options struct {
	SalaryCategory string
	SalaryAccount  string
	Currency       core.CurrencyConfig
	SheetName      string

	// Now is the clock for the rolling analysis; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	store     TransactionStore
	importer  Importer
	publisher ImportPublisher
	opts      Options
}

// NewServer configures routes and returns a ready-to-run server.
// publisher may be nil; async imports then answer 503.
func NewServer(addr string, store TransactionStore, importer Importer, publisher ImportPublisher, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:     store,
		importer:  importer,
		publisher: publisher,
		opts:      opts,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/import", s.withMiddleware(s.handleImport))
	mux.HandleFunc("/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/transaction", s.withMiddleware(s.handleTopTransactions))
	mux.HandleFunc("/category_transaction", s.withMiddleware(s.handleTopByCategory))
	mux.HandleFunc("/trend", s.withMiddleware(s.handleTrend))
	mux.HandleFunc("/analysis", s.withMiddleware(s.handleAnalysis))
	mux.HandleFunc("/income", s.withMiddleware(s.handleIncome))
	mux.HandleFunc("/saving", s.withMiddleware(s.handleSaving))
	mux.HandleFunc("/transactions", s.withMiddleware(s.handleTransactions))

	return s
}

// withMiddleware adds security headers and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
