package cmd

import (
	"context"
	"errors"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/display"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/eventlog"
	"github.com/unclesp1d3r/keysmith/lib/lockfile"
	"github.com/unclesp1d3r/keysmith/lib/target"
	"github.com/unclesp1d3r/keysmith/lib/wordlist"
)

// errInterrupted is returned when the operator cancelled the run.
var errInterrupted = errors.New("attack cancelled")

// attackRun holds the per-target resources of one attack or resume.
type attackRun struct {
	target   string
	store    checkpoint.Store
	lock     *lockfile.Lock
	recorder *eventlog.Recorder
	engine   *engine.Engine
	showBar  bool
}

// openRun takes the target's lock and builds an engine wired to the on-disk stores.
func openRun(tgt string, rate float64, showBar bool) (*attackRun, error) {
	lock, err := lockfile.Acquire(appstate.State.LocksPath, tgt)
	if err != nil {
		return nil, err
	}

	r := &attackRun{
		target:  tgt,
		store:   checkpoint.NewFileStore(appstate.State.SessionsPath),
		lock:    lock,
		showBar: showBar,
	}

	opts := []engine.Option{
		engine.WithLocator(locator()),
		engine.WithWordlistProvider(wordlist.Provider{}),
		engine.WithRateLimit(rate),
	}

	if appstate.State.RecordEvents {
		r.recorder = eventlog.NewRecorder(appstate.State.EventsPath)
		opts = append(opts, engine.WithRecorder(r.recorder))
	}

	r.engine = engine.New(r.store, opts...)

	return r, nil
}

// close releases the event log and the target lock.
func (r *attackRun) close() {
	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			appstate.Logger.Warn("Failed to close event log", "error", err)
		}
	}

	if err := r.lock.Release(); err != nil {
		appstate.Logger.Warn("Failed to release lock", "path", r.lock.Path(), "error", err)
	}
}

// follow consumes engine events until the run pauses or concludes. The first interrupt
// requests a pause and a second one cancels the session.
func (r *attackRun) follow(ctx context.Context, start int64, total *big.Int) (*engine.Outcome, error) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var bar *display.AttackBar
	if r.showBar {
		barTotal := int64(0)
		if total != nil && total.IsInt64() {
			barTotal = total.Int64()
		}
		bar = display.NewAttackBar(r.target, start, barTotal)
		defer bar.Finish()
	}

	appstate.State.SetCurrentActivity(appstate.CurrentActivityAttacking)

	var lastStatus time.Time
	interrupts := 0

	for {
		select {
		case sig := <-sigCh:
			interrupts++
			appstate.Logger.Debug("Received signal", "signal", sig)

			if interrupts == 1 {
				appstate.Logger.Warn("Pausing attack, interrupt again to cancel")
				r.engine.RequestPause()
			} else {
				appstate.Logger.Warn("Cancelling attack")
				r.engine.RequestCancel()
			}

		case <-ctx.Done():
			// The engine treats a cancelled parent context as a pause; keep draining.
			ctx = context.Background()

		case ev := <-r.engine.Events():
			switch ev.Kind {
			case engine.EventProgress:
				if ev.Progress == nil {
					continue
				}

				if bar != nil {
					bar.Update(*ev.Progress)
				} else if time.Since(lastStatus) >= appstate.State.StatusInterval {
					display.JobProgress(*ev.Progress)
					lastStatus = time.Now()
				}

			case engine.EventPaused:
				appstate.State.SetCurrentActivity(appstate.CurrentActivityPaused)
				display.Paused(ev.Session)

				return nil, nil

			case engine.EventOutcome:
				appstate.State.SetCurrentActivity(appstate.CurrentActivityStopping)
				if ev.Outcome == nil {
					continue
				}
				display.Outcome(*ev.Outcome)

				if ev.Outcome.State == engine.StateCancelled {
					return ev.Outcome, errInterrupted
				}

				return ev.Outcome, nil

			default:
				display.Event(ev)
			}
		}
	}
}

// locator returns the scan-results locator when a scan file is configured.
func locator() target.Locator {
	if appstate.State.ScanFile != "" {
		return target.File{Path: appstate.State.ScanFile}
	}

	return target.Any{}
}

// estimateTotal counts the candidates of cfg, counting the wordlist on disk if needed.
// A nil result means the count is unknown.
func estimateTotal(cfg candidate.Config) *big.Int {
	total := candidate.EstimateTotal(cfg)
	if cfg.Strategy.UsesDictionary() && len(cfg.Words) == 0 && cfg.WordlistPath != "" {
		n, err := wordlist.Count(cfg.WordlistPath)
		if err != nil {
			return nil
		}
		total.Add(total, big.NewInt(int64(n)))
	}

	return total
}
