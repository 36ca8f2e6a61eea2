// Package handler exposes the reflection session engine over JSON HTTP,
// with a websocket (and SSE fallback) stream of session state for the UI
// countdown.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinsight/internal/analysis"
	"clinsight/internal/catalog"
	"clinsight/internal/gateway/service/session"
	"clinsight/internal/timeout"
)

type Handler struct {
	sessions *session.Service
	catalog  *catalog.Store
}

func New(sessions *session.Service, cat *catalog.Store) *Handler {
	return &Handler{sessions: sessions, catalog: cat}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates", h.handleListTemplates)
	mux.HandleFunc("GET /api/templates/{id}", h.handleGetTemplate)

	mux.HandleFunc("POST /api/sessions/{id}/start", h.handleStart)
	mux.HandleFunc("POST /api/sessions/{id}/pause", h.handlePause)
	mux.HandleFunc("POST /api/sessions/{id}/resume", h.handleResume)
	mux.HandleFunc("POST /api/sessions/{id}/stop", h.handleStop)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.handleReset)
	mux.HandleFunc("POST /api/sessions/{id}/responses", h.handleSetResponse)
	mux.HandleFunc("POST /api/sessions/{id}/navigate", h.handleNavigate)
	mux.HandleFunc("POST /api/sessions/{id}/analysis", h.handleAnalyze)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleState)
	mux.HandleFunc("GET /api/sessions/{id}/ws", h.handleWatchWS)
	mux.HandleFunc("GET /api/watch/{id}", h.handleWatchSSE)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP statuses. Validation and index
// errors are caller mistakes; an active session is a conflict; analysis
// failures are an upstream problem.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrUnknownSession), errors.Is(err, session.ErrUnknownTemplate):
		status = http.StatusNotFound
	case errors.Is(err, timeout.ErrValidation), errors.Is(err, timeout.ErrIndexOutOfRange), errors.Is(err, timeout.ErrNoSession):
		status = http.StatusBadRequest
	case errors.Is(err, timeout.ErrSessionActive):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoAnalyzer):
		status = http.StatusServiceUnavailable
	case errors.Is(err, analysis.ErrRequest):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
