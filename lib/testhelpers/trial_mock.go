package testhelpers

import (
	"context"
	"sync"
)

// RecordingTrial is a credential trial that records every candidate it is asked to try.
type RecordingTrial struct {
	// Match is the candidate that succeeds. Empty never matches.
	Match string
	// FailOn maps candidates to errors returned instead of a verdict.
	FailOn map[string]error
	// OnTry is called with the 1-based call number before the verdict is returned.
	OnTry func(n int)

	mu    sync.Mutex
	calls []string
}

// Try records candidate and reports whether it equals Match.
func (r *RecordingTrial) Try(_ context.Context, _, candidate string) (bool, error) {
	r.mu.Lock()
	r.calls = append(r.calls, candidate)
	n := len(r.calls)
	hook := r.OnTry
	r.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	if err, ok := r.FailOn[candidate]; ok {
		return false, err
	}

	return r.Match != "" && candidate == r.Match, nil
}

// Calls returns a copy of the candidates tried so far, in order.
func (r *RecordingTrial) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// BlockingTrial blocks every attempt until its context is cancelled.
type BlockingTrial struct {
	Started chan struct{}
}

// NewBlockingTrial returns a BlockingTrial whose Started channel fires on the first attempt.
func NewBlockingTrial() *BlockingTrial {
	return &BlockingTrial{Started: make(chan struct{}, 1)}
}

// Try waits for ctx to be done.
func (b *BlockingTrial) Try(ctx context.Context, _, _ string) (bool, error) {
	select {
	case b.Started <- struct{}{}:
	default:
	}

	<-ctx.Done()
	return false, ctx.Err()
}

// UnavailableTrial fails its availability check.
type UnavailableTrial struct {
	RecordingTrial
}

// Available always reports ErrInjected.
func (*UnavailableTrial) Available(context.Context) error {
	return ErrInjected
}
