package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinsight/internal/analysis"
	"clinsight/internal/catalog"
	"clinsight/internal/gateway/service/session"
	"clinsight/internal/timeout"
)

type okAnalyzer struct{}

func (okAnalyzer) Analyze(_ context.Context, _ analysis.Request) (analysis.Result, error) {
	return analysis.Result{TimeoutRecommendation: "continue, recheck in 2h"}, nil
}

func (okAnalyzer) Close() error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *session.Service) {
	t.Helper()
	cat := catalog.New(filepath.Join(t.TempDir(), "templates.json"))
	cat.EnsureLoaded()
	svc := session.New(cat, okAnalyzer{}, nil, session.WithTickInterval(0))

	mux := http.NewServeMux()
	New(svc, cat).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) timeout.Snapshot {
	t.Helper()
	defer resp.Body.Close()
	var snap timeout.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func TestListTemplates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/templates")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var templates []catalog.Template
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&templates))
	assert.NotEmpty(t, templates)

	resp, err = http.Get(srv.URL + "/api/templates/no-such-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv, svc := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":               "rapid-recheck",
		"case_description":          "19M collapsed during football practice.",
		"current_working_diagnosis": "vasovagal syncope",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, timeout.StatusRunning, snap.Status)

	// Advance the engine; the HTTP layer just reads state.
	for i := 0; i < 30; i++ {
		svc.Tick("sess-1")
	}
	resp, err := http.Get(srv.URL + "/api/sessions/sess-1")
	require.NoError(t, err)
	snap = decodeSnapshot(t, resp)
	assert.Equal(t, 30, snap.ElapsedSeconds)
	assert.Equal(t, 1, snap.CurrentPromptIndex)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/pause", nil)
	assert.Equal(t, timeout.StatusPaused, decodeSnapshot(t, resp).Status)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/responses", map[string]any{
		"prompt_index": 1,
		"text":         "hypertrophic cardiomyopathy",
	})
	assert.Equal(t, 1, decodeSnapshot(t, resp).PromptsAnswered)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/stop", nil)
	assert.Equal(t, timeout.StatusCompleted, decodeSnapshot(t, resp).Status)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/reset", nil)
	assert.Equal(t, timeout.StatusNotStarted, decodeSnapshot(t, resp).Status)
}

func TestStartValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":      "rapid-recheck",
		"case_description": "",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":      "missing",
		"case_description": "a case",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetResponseIndexError(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":      "rapid-recheck",
		"case_description": "a case",
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/responses", map[string]any{
		"prompt_index": 99,
		"text":         "x",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":      "rapid-recheck",
		"case_description": "a case",
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/navigate", map[string]string{"direction": "next"})
	assert.Equal(t, 1, decodeSnapshot(t, resp).CurrentPromptIndex)

	idx := 3
	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/navigate", map[string]any{"index": idx})
	assert.Equal(t, 3, decodeSnapshot(t, resp).CurrentPromptIndex)

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/navigate", map[string]any{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/sessions/sess-1/start", map[string]string{
		"template_id":               "rapid-recheck",
		"case_description":          "19M collapsed during football practice.",
		"current_working_diagnosis": "vasovagal syncope",
	})
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/stop", nil)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/sessions/sess-1/analysis", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Insights analysis.Result `json:"insights"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "continue, recheck in 2h", body.Insights.TimeoutRecommendation)

	// Analysis before start is a caller error.
	resp = postJSON(t, srv.URL+"/api/sessions/other/analysis", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
