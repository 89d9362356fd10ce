package http

import (
	"errors"
	"log/slog"
	"net/http"

	"findash/internal/amqp"
	"findash/internal/core"
)

// handleImport triggers a full-refresh import. By default it runs
// inline and answers with the import summary; with async=1 it only
// enqueues a request for the worker.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.URL.Query().Get("async") == "1" {
		if s.publisher == nil {
			writeError(w, http.StatusServiceUnavailable, "async imports are not configured")
			return
		}
		msg := amqp.NewImportRequestMessage(s.opts.SheetName, r.Header.Get("X-Requested-By"))
		if err := s.publisher.PublishImportRequest(r.Context(), msg); err != nil {
			slog.ErrorContext(r.Context(), "Import request publish failed", "error", err)
			writeError(w, http.StatusBadGateway, "failed to enqueue import request")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "queued",
			"sheet":  s.opts.SheetName,
		})
		return
	}

	res, err := s.importer.Run(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, core.ErrSourceUnreachable):
		slog.ErrorContext(r.Context(), "Import source unreachable", "error", err)
		writeError(w, http.StatusBadGateway, "spreadsheet source unreachable")
	case errors.Is(err, core.ErrBadDate):
		slog.ErrorContext(r.Context(), "Import rejected", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
	}
}
