package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/lib/engine"
)

const runTimeout = 5 * time.Second

// WaitForRun waits for the engine's current run to stop and returns every buffered event.
func WaitForRun(t *testing.T, eng *engine.Engine) []engine.Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	_, err := eng.Wait(ctx)
	require.NoError(t, err, "run did not stop in time")

	return DrainEvents(eng.Events())
}

// DrainEvents returns the events currently buffered on ch without blocking.
func DrainEvents(ch <-chan engine.Event) []engine.Event {
	var events []engine.Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// EventsOfKind filters events by kind.
func EventsOfKind(events []engine.Event, kind engine.EventKind) []engine.Event {
	var out []engine.Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// RequireOutcome asserts that events hold exactly one outcome, as the last event, and returns it.
func RequireOutcome(t *testing.T, events []engine.Event) engine.Outcome {
	t.Helper()

	outcomes := EventsOfKind(events, engine.EventOutcome)
	require.Len(t, outcomes, 1, "expected exactly one outcome event")
	require.Equal(t, engine.EventOutcome, events[len(events)-1].Kind, "outcome must be the last event")
	require.NotNil(t, outcomes[0].Outcome)

	return *outcomes[0].Outcome
}

// AssertProgressOrdered asserts that progress events carry strictly increasing indices.
func AssertProgressOrdered(t *testing.T, events []engine.Event) {
	t.Helper()

	var last int64 = -1
	for _, ev := range EventsOfKind(events, engine.EventProgress) {
		require.NotNil(t, ev.Progress)
		require.Greater(t, ev.Progress.Index, last, "progress index went backwards")
		last = ev.Progress.Index
	}
}
