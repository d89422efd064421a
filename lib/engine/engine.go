// Package engine drives an attack session: it walks the candidate sequence, calls the
// credential trial for each candidate, checkpoints progress and reports a single outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/cserrors"
	"github.com/unclesp1d3r/keysmith/lib/progress"
	"github.com/unclesp1d3r/keysmith/lib/target"
	"golang.org/x/time/rate"
)

const recentFailureWindow = 8

// CredentialTrial tests one candidate against a target.
// A non-nil error means the attempt could not be made and is counted as a non-match.
type CredentialTrial interface {
	Try(ctx context.Context, target, candidate string) (bool, error)
}

// TrialFunc adapts an ordinary function to CredentialTrial.
type TrialFunc func(ctx context.Context, target, candidate string) (bool, error)

// Try calls f.
func (f TrialFunc) Try(ctx context.Context, target, candidate string) (bool, error) {
	return f(ctx, target, candidate)
}

// Prechecker is implemented by trials that can verify their own availability before a run.
type Prechecker interface {
	Available(ctx context.Context) error
}

// Engine runs at most one attack session at a time.
// Start and Resume are safe to call from any goroutine; the worker they spawn is the only
// writer of the session it runs.
type Engine struct {
	store       checkpoint.Store
	locator     target.Locator
	wordlists   WordlistProvider
	limiter     *rate.Limiter
	now         func() time.Time
	recorder    Recorder
	eventBuffer int
	events      chan Event

	launchMu sync.Mutex // serializes Start, Resume and cancelling a paused session

	mu        sync.Mutex
	state     State
	done      chan struct{}
	held      *checkpoint.Session // paused session, words included
	cancelRun context.CancelFunc
	pending   chan struct{} // open while a cancelled pause's events wait for buffer space

	pauseRequested  atomic.Bool
	cancelRequested atomic.Bool
}

// New returns an idle Engine persisting checkpoints to store.
func New(store checkpoint.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		locator:     target.Any{},
		now:         time.Now,
		eventBuffer: defaultEventBuffer,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.events = make(chan Event, e.eventBuffer)

	closed := make(chan struct{})
	close(closed)
	e.done = closed

	return e
}

// Events returns the ordered event stream. The channel is shared by every run of the engine
// and is never closed. The worker blocks when the buffer is full, so the controller must keep
// draining it while a run is active.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Done returns a channel closed when the current run stops, whether paused or terminal.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.done
}

// Wait blocks until the current run stops or ctx is done, and returns the resulting state.
func (e *Engine) Wait(ctx context.Context) (State, error) {
	select {
	case <-e.Done():
		return e.State(), nil
	case <-ctx.Done():
		return e.State(), ctx.Err()
	}
}

// Held returns a copy of the paused session, or nil when the engine is not paused.
func (e *Engine) Held() *checkpoint.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePaused || e.held == nil {
		return nil
	}

	return e.held.Clone()
}

// Start validates the request and launches a fresh run against tgt.
// It returns once the worker has been spawned; results arrive on Events.
func (e *Engine) Start(ctx context.Context, tgt string, cfg candidate.Config, trial CredentialTrial) error {
	e.launchMu.Lock()
	defer e.launchMu.Unlock()

	tgt = strings.TrimSpace(tgt)
	if err := e.checkIdle(""); err != nil {
		return e.reject(tgt, precondition(err))
	}

	if err := e.prepare(ctx, tgt, &cfg, trial); err != nil {
		return e.reject(tgt, precondition(err))
	}

	if err := e.locate(ctx, tgt); err != nil {
		return e.reject(tgt, precondition(err))
	}

	seq, err := candidate.Generate(cfg, 0)
	if err != nil {
		return e.reject(tgt, precondition(err))
	}

	sess := checkpoint.NewSession(tgt, cfg, e.now())
	e.checkpoint(sess)
	e.launch(ctx, sess, seq, trial)

	return nil
}

// Resume continues a checkpointed session from its CurrentIndex.
// It is allowed from idle, from paused on the same target, and after any terminal state.
func (e *Engine) Resume(ctx context.Context, saved *checkpoint.Session, trial CredentialTrial) error {
	e.launchMu.Lock()
	defer e.launchMu.Unlock()

	if err := saved.Validate(); err != nil {
		return e.reject("", resumeFailed(err))
	}

	tgt := saved.Target
	if err := e.checkIdle(tgt); err != nil {
		return e.reject(tgt, precondition(err))
	}

	sess := saved.Clone()
	if len(saved.Config.Words) > 0 {
		sess.Config.Words = saved.Config.Words
	} else if held := e.heldWords(saved.ID); held != nil {
		sess.Config.Words = held
	}

	if err := e.locate(ctx, tgt); err != nil {
		return e.reject(tgt, resumeFailed(err))
	}

	if err := e.reloadWordlist(&sess.Config); err != nil {
		return e.reject(tgt, resumeFailed(err))
	}

	if trial == nil {
		return e.reject(tgt, precondition(ErrNoTrial))
	}

	if err := sess.Config.Validate(); err != nil {
		return e.reject(tgt, resumeFailed(err))
	}

	if err := available(ctx, trial); err != nil {
		return e.reject(tgt, precondition(err))
	}

	seq, err := candidate.Generate(sess.Config, sess.CurrentIndex)
	if err != nil {
		return e.reject(tgt, resumeFailed(err))
	}

	e.launch(ctx, sess, seq, trial)

	return nil
}

// RequestPause asks the running worker to checkpoint and stop before its next candidate.
func (e *Engine) RequestPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		e.pauseRequested.Store(true)
	}
}

// RequestCancel asks the running worker to stop and discard its checkpoint.
// A paused session is cancelled immediately: its checkpoint is gone and its outcome queued
// before RequestCancel returns.
func (e *Engine) RequestCancel() {
	e.launchMu.Lock()
	defer e.launchMu.Unlock()

	e.mu.Lock()
	switch e.state {
	case StateRunning:
		e.cancelRequested.Store(true)
		if e.cancelRun != nil {
			e.cancelRun()
		}
		e.mu.Unlock()

		return
	case StatePaused:
	default:
		e.mu.Unlock()

		return
	}

	sess := e.held
	e.held = nil
	e.state = StateCancelled
	pending := make(chan struct{})
	e.done = pending
	e.pending = pending
	e.mu.Unlock()

	var evs []Event
	if err := e.store.Delete(sess.Target); err != nil {
		err = fmt.Errorf("%w: %w", cserrors.ErrPersistence, err)
		_ = cserrors.LogError("Checkpoint store failure", err, "target", sess.Target)
		evs = append(evs, Event{Kind: EventWarning, Target: sess.Target, Message: err.Error(), Err: err})
	}

	appstate.Logger.Info("Attack session cancelled while paused", "target", sess.Target)
	evs = append(evs, Event{
		Kind:   EventOutcome,
		Target: sess.Target,
		Index:  sess.CurrentIndex,
		Outcome: &Outcome{
			SessionID:     sess.ID,
			Target:        sess.Target,
			State:         StateCancelled,
			Elapsed:       max(e.now().Sub(sess.StartTime), 0),
			AttemptsTried: sess.CurrentIndex,
		},
	})

	// The caller may be the event reader, so never block it here.
	e.deliver(pending, evs...)
}

func (e *Engine) checkIdle(tgt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateRunning:
		return ErrSessionActive
	case StatePaused:
		if tgt == "" || e.held == nil || e.held.Target != tgt {
			return ErrSessionActive
		}
	default:
	}

	// A cancelled pause whose outcome has not reached the channel yet still owns the stream.
	if e.pending != nil {
		select {
		case <-e.pending:
			e.pending = nil
		default:
			return ErrSessionActive
		}
	}

	return nil
}

func (e *Engine) heldWords(id string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.held == nil || e.held.ID != id {
		return nil
	}

	return e.held.Config.Words
}

// prepare runs the fresh-start preconditions and resolves the dictionary into cfg.
func (e *Engine) prepare(ctx context.Context, tgt string, cfg *candidate.Config, trial CredentialTrial) error {
	if tgt == "" {
		return ErrNoTarget
	}

	if trial == nil {
		return ErrNoTrial
	}

	if cfg.Strategy.UsesDictionary() && len(cfg.Words) == 0 && cfg.WordlistPath != "" {
		if e.wordlists == nil {
			return ErrNoWordlistProvider
		}

		sum, err := e.wordlists.Checksum(cfg.WordlistPath)
		if err != nil {
			return fmt.Errorf("checksumming wordlist: %w", err)
		}

		words, err := e.wordlists.Load(cfg.WordlistPath)
		if err != nil {
			return fmt.Errorf("loading wordlist: %w", err)
		}

		cfg.Words = words
		cfg.WordlistChecksum = sum
	} else {
		cfg.Words = candidate.Normalize(cfg.Words)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return available(ctx, trial)
}

// reloadWordlist restores the dictionary of a checkpointed configuration and verifies
// that it still matches the checksum taken when the session started.
func (e *Engine) reloadWordlist(cfg *candidate.Config) error {
	if !cfg.Strategy.UsesDictionary() || cfg.WordlistPath == "" {
		return nil
	}

	if e.wordlists == nil {
		if len(cfg.Words) > 0 {
			return nil
		}

		return ErrNoWordlistProvider
	}

	if cfg.WordlistChecksum != "" {
		sum, err := e.wordlists.Checksum(cfg.WordlistPath)
		if err != nil {
			return fmt.Errorf("checksumming wordlist: %w", err)
		}

		if sum != cfg.WordlistChecksum {
			return fmt.Errorf("%w: %s", ErrWordlistChanged, cfg.WordlistPath)
		}
	}

	if len(cfg.Words) > 0 {
		return nil
	}

	words, err := e.wordlists.Load(cfg.WordlistPath)
	if err != nil {
		return fmt.Errorf("loading wordlist: %w", err)
	}

	cfg.Words = words

	return nil
}

func (e *Engine) locate(ctx context.Context, tgt string) error {
	if e.locator == nil {
		return nil
	}

	if err := e.locator.Locate(ctx, tgt); err != nil {
		return fmt.Errorf("locating %q: %w", tgt, err)
	}

	return nil
}

func available(ctx context.Context, trial CredentialTrial) error {
	if pc, ok := trial.(Prechecker); ok {
		if err := pc.Available(ctx); err != nil {
			return fmt.Errorf("credential trial unavailable: %w", err)
		}
	}

	return nil
}

func precondition(err error) error {
	return fmt.Errorf("%w: %w", cserrors.ErrPrecondition, err)
}

func resumeFailed(err error) error {
	return fmt.Errorf("%w: %w", cserrors.ErrResume, err)
}

// reject reports a refused start without touching engine state.
func (e *Engine) reject(tgt string, err error) error {
	_ = cserrors.LogError("Attack session rejected", err, "target", tgt)

	ev := e.stamp(Event{Kind: EventRejected, Target: tgt, Message: err.Error(), Err: err})
	e.record(ev)

	select {
	case e.events <- ev:
	default:
		appstate.Logger.Debug("Event buffer full, dropping rejection event", "target", tgt)
	}

	return err
}

func (e *Engine) launch(ctx context.Context, sess *checkpoint.Session, seq iter.Seq[string], trial CredentialTrial) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.state = StateRunning
	e.held = nil
	e.done = done
	e.cancelRun = cancel
	e.pauseRequested.Store(false)
	e.cancelRequested.Store(false)
	e.mu.Unlock()

	total, known := candidate.TotalInt64(sess.Config)
	if !known {
		total = 0
	}

	appstate.Logger.Info("Attack session running",
		"target", sess.Target, "session", sess.ID, "strategy", sess.Config.Strategy,
		"from_index", sess.CurrentIndex, "total", total)

	w := &worker{
		engine: e,
		ctx:    ctx,
		runCtx: runCtx,
		sess:   sess,
		seq:    seq,
		trial:  trial,
		total:  total,
	}

	go func() {
		defer close(done)
		defer cancel()
		w.run()
	}()
}

// checkpoint persists sess; failures degrade to a warning event.
func (e *Engine) checkpoint(sess *checkpoint.Session) {
	sess.UpdatedAt = e.now()
	if err := e.store.Save(sess); err != nil {
		e.warn(sess.Target, fmt.Errorf("%w: %w", cserrors.ErrPersistence, err))
	}
}

func (e *Engine) discard(tgt string) {
	if err := e.store.Delete(tgt); err != nil {
		e.warn(tgt, fmt.Errorf("%w: %w", cserrors.ErrPersistence, err))
	}
}

func (e *Engine) warn(tgt string, err error) {
	_ = cserrors.LogError("Checkpoint store failure", err, "target", tgt)
	e.emit(Event{Kind: EventWarning, Target: tgt, Message: err.Error(), Err: err})
}

func (e *Engine) stamp(ev Event) Event {
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}

	return ev
}

func (e *Engine) record(ev Event) {
	if e.recorder == nil {
		return
	}

	if err := e.recorder.Record(ev); err != nil {
		appstate.Logger.Debug("Failed to record event", "kind", ev.Kind, "error", err)
	}
}

func (e *Engine) emit(ev Event) {
	ev = e.stamp(ev)
	e.record(ev)
	e.events <- ev
}

// deliver records evs and queues them in order without blocking. Events that do not fit in
// the buffer are handed to a goroutine; done closes once every event is on the channel.
func (e *Engine) deliver(done chan struct{}, evs ...Event) {
	for i := range evs {
		evs[i] = e.stamp(evs[i])
		e.record(evs[i])
	}

	for i, ev := range evs {
		select {
		case e.events <- ev:
		default:
			rest := evs[i:]
			go func() {
				defer close(done)
				for _, ev := range rest {
					e.events <- ev
				}
			}()

			return
		}
	}

	close(done)
}

// finish moves the engine into its post-run state. held is kept only for a pause.
func (e *Engine) finish(state State, held *checkpoint.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	e.held = held
	e.cancelRun = nil
}

type worker struct {
	engine *Engine
	ctx    context.Context //nolint:containedctx // owned by the run
	runCtx context.Context //nolint:containedctx // cancelled by RequestCancel
	sess   *checkpoint.Session
	seq    iter.Seq[string]
	trial  CredentialTrial
	total  int64
	recent []string
}

func (w *worker) run() {
	e := w.engine

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("attack worker panicked: %v", r)
			appstate.ErrorLogger.Error("Attack session failed", "target", w.sess.Target, "error", err)
			if appstate.State.Debug {
				appstate.Logger.Debug(string(debug.Stack()))
			}
			// The last checkpoint stays on disk for crash recovery.
			w.conclude(StateFailed, false, "", w.sess.CurrentIndex)
		}
	}()

	index := w.sess.CurrentIndex

	for cand := range w.seq {
		if e.cancelRequested.Load() {
			w.cancelled(index)
			return
		}

		if e.pauseRequested.Load() || w.ctx.Err() != nil {
			w.paused()
			return
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(w.runCtx); err != nil {
				w.interrupted(index)
				return
			}
		}

		ordinal := index + 1

		found, err := w.trial.Try(w.runCtx, w.sess.Target, cand)
		if err != nil && w.runCtx.Err() != nil {
			// The trial was cut short by cancellation; it does not count as an attempt.
			w.interrupted(index)
			return
		}

		if err != nil {
			trialErr := fmt.Errorf("%w: %w", cserrors.ErrTransient, err)
			_ = cserrors.LogError("Credential trial failed", trialErr, "target", w.sess.Target, "index", ordinal)
			e.emit(Event{
				Kind:    EventTrialError,
				Target:  w.sess.Target,
				Index:   ordinal,
				Message: trialErr.Error(),
				Err:     trialErr,
			})
			found = false
		}

		if found {
			e.discard(w.sess.Target)
			w.conclude(StateSucceeded, true, cand, ordinal)
			return
		}

		index = ordinal
		w.sess.Advance(index)
		e.checkpoint(w.sess)
		w.remember(cand)
		e.emit(Event{Kind: EventProgress, Target: w.sess.Target, Index: index, Progress: w.progress(index, cand)})
	}

	// Signals raised during the last trial still win over exhaustion.
	if e.cancelRequested.Load() {
		w.cancelled(index)
		return
	}

	if e.pauseRequested.Load() || w.ctx.Err() != nil {
		w.paused()
		return
	}

	e.discard(w.sess.Target)
	w.conclude(StateExhausted, false, "", index)
}

func (w *worker) interrupted(index int64) {
	if w.engine.cancelRequested.Load() {
		w.cancelled(index)
		return
	}

	w.paused()
}

func (w *worker) cancelled(index int64) {
	w.engine.discard(w.sess.Target)
	w.conclude(StateCancelled, false, "", index)
}

func (w *worker) paused() {
	e := w.engine
	e.checkpoint(w.sess)

	held := w.sess.Clone()
	held.Config.Words = w.sess.Config.Words
	e.finish(StatePaused, held)

	appstate.Logger.Info("Attack session paused", "target", w.sess.Target, "index", w.sess.CurrentIndex)
	e.emit(Event{Kind: EventPaused, Target: w.sess.Target, Index: w.sess.CurrentIndex, Session: w.sess.Clone()})
}

func (w *worker) conclude(state State, found bool, cand string, attempts int64) {
	e := w.engine
	out := &Outcome{
		SessionID:     w.sess.ID,
		Target:        w.sess.Target,
		State:         state,
		Found:         found,
		Candidate:     cand,
		Elapsed:       w.elapsed(),
		AttemptsTried: attempts,
	}

	e.finish(state, nil)

	appstate.Logger.Info("Attack session finished",
		"target", out.Target, "state", out.State, "attempts", out.AttemptsTried, "elapsed", out.Elapsed)
	e.emit(Event{Kind: EventOutcome, Target: w.sess.Target, Index: attempts, Outcome: out})
}

func (w *worker) elapsed() time.Duration {
	return max(w.engine.now().Sub(w.sess.StartTime), 0)
}

func (w *worker) remember(cand string) {
	w.recent = append(w.recent, cand)
	if len(w.recent) > recentFailureWindow {
		w.recent = w.recent[len(w.recent)-recentFailureWindow:]
	}
}

func (w *worker) progress(index int64, cand string) *Progress {
	p := &Progress{
		Index:          index,
		Total:          w.total,
		Elapsed:        w.elapsed(),
		Candidate:      cand,
		RecentFailures: append([]string(nil), w.recent...),
	}
	p.Percent, p.PercentKnown = progress.Percent(index, w.total)
	p.ETA, p.ETAKnown = progress.EstimateRemaining(p.Elapsed, index, w.total)

	return p
}

// IsRejected reports whether err came from a refused start or resume.
func IsRejected(err error) bool {
	return errors.Is(err, cserrors.ErrPrecondition) || errors.Is(err, cserrors.ErrResume)
}
