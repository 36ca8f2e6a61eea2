package analysis

import "context"

// Handle tracks one in-flight analysis request. The engine never blocks on
// it; the caller can wait on Done, read the outcome, or Cancel when the UI
// hosting the session is torn down.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
	err    error
}

// Dispatch fires the request on its own goroutine and returns immediately.
func Dispatch(ctx context.Context, c Client, req Request) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		defer cancel()
		h.result, h.err = c.Analyze(ctx, req)
	}()
	return h
}

// Cancel abandons the in-flight request. Safe to call more than once and
// after completion.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the request finished, failed or was cancelled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the result and error. Only valid after Done is closed.
func (h *Handle) Outcome() (Result, error) {
	return h.result, h.err
}

// Wait blocks until the request settles or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-h.done:
		return h.result, h.err
	}
}
