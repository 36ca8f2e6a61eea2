// Package session hosts timeout controllers for the gateway: one controller
// per session ID, a 1-second ticker per active session driving the engine,
// and a fan-out of state snapshots to watchers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"clinsight/internal/analysis"
	"clinsight/internal/archive"
	"clinsight/internal/catalog"
	"clinsight/internal/timeout"
)

var (
	ErrUnknownSession  = errors.New("session: unknown session id")
	ErrUnknownTemplate = errors.New("session: unknown template id")
	ErrNoAnalyzer      = errors.New("session: no analysis client configured")
)

// Service serializes all access to the controllers behind one mutex; the
// engine itself is single-threaded by design.
type Service struct {
	catalog  *catalog.Store
	analyzer analysis.Client
	archive  archive.Store // nil disables archiving

	tick time.Duration

	mu       sync.Mutex
	sessions map[string]*hosted
}

// hosted is one controller plus its scheduler and watchers.
type hosted struct {
	ctrl       *timeout.Controller
	subs       map[chan timeout.Snapshot]struct{}
	stopTicker context.CancelFunc
}

type Option func(*Service)

// WithTickInterval overrides the 1-second cadence. Zero disables the
// background ticker entirely; tests then drive Tick directly.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) { s.tick = d }
}

func New(cat *catalog.Store, analyzer analysis.Client, arch archive.Store, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		analyzer: analyzer,
		archive:  arch,
		tick:     time.Second,
		sessions: make(map[string]*hosted),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) hostedFor(id string) *hosted {
	h, ok := s.sessions[id]
	if !ok {
		h = &hosted{
			ctrl: timeout.NewController(),
			subs: make(map[chan timeout.Snapshot]struct{}),
		}
		s.sessions[id] = h
	}
	return h
}

// Start begins a session for the given template. A session already live on
// this ID is forced through stop and reset first; concurrent sessions per ID
// are out of scope.
func (s *Service) Start(id, templateID string, cc timeout.CaseContext) (timeout.Snapshot, error) {
	tpl, ok := s.catalog.Get(templateID)
	if !ok {
		return timeout.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	// Validate before touching the hosted controller: a rejected start must
	// leave any prior session exactly as it was.
	if strings.TrimSpace(cc.Description) == "" {
		return timeout.Snapshot{}, fmt.Errorf("%w: case description is empty", timeout.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.hostedFor(id)
	switch h.ctrl.Status() {
	case timeout.StatusRunning, timeout.StatusPaused:
		h.ctrl.Stop()
		h.ctrl.Reset()
	case timeout.StatusCompleted:
		h.ctrl.Reset()
	}
	if h.stopTicker != nil {
		h.stopTicker()
		h.stopTicker = nil
	}

	if err := h.ctrl.Start(tpl, cc); err != nil {
		return timeout.Snapshot{}, err
	}
	s.startTickerLocked(id, h)

	snap := h.ctrl.Snapshot()
	broadcastLocked(h, snap)
	return snap, nil
}

func (s *Service) startTickerLocked(id string, h *hosted) {
	if s.tick <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.stopTicker = cancel
	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.Tick(id) {
					return
				}
			}
		}
	}()
}

// Tick advances the session by one second and reports whether the ticker
// should keep firing. Safe to call in any state.
func (s *Service) Tick(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return false
	}
	before := h.ctrl.Status()
	h.ctrl.Tick()
	after := h.ctrl.Status()
	if after == timeout.StatusRunning || before != after {
		broadcastLocked(h, h.ctrl.Snapshot())
	}
	switch after {
	case timeout.StatusRunning, timeout.StatusPaused:
		return true
	}
	if h.stopTicker != nil {
		h.stopTicker()
		h.stopTicker = nil
	}
	return false
}

func (s *Service) Pause(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.Pause() })
}

func (s *Service) Resume(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.Resume() })
}

func (s *Service) Stop(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.Stop() })
}

func (s *Service) Reset(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.Reset() })
}

func (s *Service) NextPrompt(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.NextPrompt() })
}

func (s *Service) PreviousPrompt(id string) (timeout.Snapshot, error) {
	return s.mutate(id, func(c *timeout.Controller) { c.PreviousPrompt() })
}

func (s *Service) mutate(id string, op func(*timeout.Controller)) (timeout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return timeout.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	op(h.ctrl)
	snap := h.ctrl.Snapshot()
	switch snap.Status {
	case timeout.StatusCompleted, timeout.StatusNotStarted:
		if h.stopTicker != nil {
			h.stopTicker()
			h.stopTicker = nil
		}
	}
	broadcastLocked(h, snap)
	return snap, nil
}

func (s *Service) SetResponse(id string, index int, text string) (timeout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return timeout.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err := h.ctrl.SetResponse(index, text); err != nil {
		return timeout.Snapshot{}, err
	}
	snap := h.ctrl.Snapshot()
	broadcastLocked(h, snap)
	return snap, nil
}

func (s *Service) SetPromptIndex(id string, index int) (timeout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return timeout.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err := h.ctrl.SetPromptIndex(index); err != nil {
		return timeout.Snapshot{}, err
	}
	snap := h.ctrl.Snapshot()
	broadcastLocked(h, snap)
	return snap, nil
}

// State returns the current snapshot.
func (s *Service) State(id string) (timeout.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.sessions[id]
	if !ok {
		return timeout.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return h.ctrl.Snapshot(), nil
}

// Subscribe registers a watcher. The channel receives a snapshot on every
// tick and state change until ctx is cancelled. Slow watchers miss updates
// rather than stalling the engine.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan timeout.Snapshot, error) {
	s.mu.Lock()
	h, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	ch := make(chan timeout.Snapshot, 16)
	h.subs[ch] = struct{}{}
	// Prime the watcher with the current state.
	ch <- h.ctrl.Snapshot()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(h.subs, ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func broadcastLocked(h *hosted, snap timeout.Snapshot) {
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Analyze compiles the session's summary and dispatches it to the analysis
// collaborator without blocking. The returned handle lets the caller wait or
// cancel; session state is never modified by the outcome.
func (s *Service) Analyze(ctx context.Context, id string) (*analysis.Handle, analysis.Request, error) {
	if s.analyzer == nil {
		return nil, analysis.Request{}, ErrNoAnalyzer
	}

	s.mu.Lock()
	h, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, analysis.Request{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if h.ctrl.Status() == timeout.StatusNotStarted {
		s.mu.Unlock()
		return nil, analysis.Request{}, timeout.ErrNoSession
	}
	tpl := h.ctrl.Template()
	cc := h.ctrl.Case()
	responses := h.ctrl.Responses()
	completed := h.ctrl.Completed()
	s.mu.Unlock()

	doc := timeout.CompileSummary(cc, tpl, responses)
	req := analysis.Request{
		CaseDescription:         cc.Description,
		CurrentWorkingDiagnosis: cc.WorkingDiagnosis,
		TimeoutReflections:      doc,
		Metadata: analysis.Metadata{
			TemplateID:      tpl.ID,
			DurationMinutes: tpl.DurationMinutes(),
			Completed:       completed,
			PromptsAnswered: len(responses),
		},
	}

	s.archivePut(id, "summary.txt", []byte(doc))

	handle := analysis.Dispatch(ctx, s.analyzer, req)
	go func() {
		<-handle.Done()
		result, err := handle.Outcome()
		if err != nil {
			log.Printf("analysis for session %s failed: %v", id, err)
			return
		}
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return
		}
		s.archivePut(id, "analysis.json", raw)
	}()
	return handle, req, nil
}

func (s *Service) archivePut(id, name string, content []byte) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.archive.Put(ctx, id, name, content); err != nil {
		log.Printf("archive %s for session %s failed: %v", name, id, err)
	}
}

// Shutdown stops every ticker. Sessions are in-memory only and are lost, by
// design.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.sessions {
		if h.stopTicker != nil {
			h.stopTicker()
			h.stopTicker = nil
		}
	}
}
