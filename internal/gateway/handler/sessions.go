package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clinsight/internal/timeout"
)

type startRequest struct {
	TemplateID              string `json:"template_id"`
	CaseDescription         string `json:"case_description"`
	CurrentWorkingDiagnosis string `json:"current_working_diagnosis"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	snap, err := h.sessions.Start(r.PathValue("id"), req.TemplateID, timeout.CaseContext{
		Description:      req.CaseDescription,
		WorkingDiagnosis: req.CurrentWorkingDiagnosis,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.State(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.simpleOp(w, r, h.sessions.Pause)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.simpleOp(w, r, h.sessions.Resume)
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.simpleOp(w, r, h.sessions.Stop)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.simpleOp(w, r, h.sessions.Reset)
}

func (h *Handler) simpleOp(w http.ResponseWriter, r *http.Request, op func(string) (timeout.Snapshot, error)) {
	snap, err := op(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type responseRequest struct {
	PromptIndex int    `json:"prompt_index"`
	Text        string `json:"text"`
}

func (h *Handler) handleSetResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	snap, err := h.sessions.SetResponse(r.PathValue("id"), req.PromptIndex, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type navigateRequest struct {
	// Direction is "next" or "previous"; Index is used when Direction is
	// empty.
	Direction string `json:"direction,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	id := r.PathValue("id")

	var (
		snap timeout.Snapshot
		err  error
	)
	switch {
	case req.Direction == "next":
		snap, err = h.sessions.NextPrompt(id)
	case req.Direction == "previous":
		snap, err = h.sessions.PreviousPrompt(id)
	case req.Index != nil:
		snap, err = h.sessions.SetPromptIndex(id, *req.Index)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "direction or index is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type analyzeResponse struct {
	Request  json.RawMessage `json:"request"`
	Insights json.RawMessage `json:"insights"`
}

// handleAnalyze compiles the session summary, calls the analysis
// collaborator and returns its structured insights. The session itself is
// untouched either way, so the caller can simply retry on failure.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	handle, req, err := h.sessions.Analyze(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()
	result, err := handle.Wait(ctx)
	if err != nil {
		handle.Cancel()
		writeError(w, err)
		return
	}

	reqJSON, _ := json.Marshal(req)
	resJSON, _ := json.Marshal(result)
	writeJSON(w, http.StatusOK, analyzeResponse{Request: reqJSON, Insights: resJSON})
}
