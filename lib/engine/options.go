package engine

import (
	"time"

	"github.com/unclesp1d3r/keysmith/lib/target"
	"golang.org/x/time/rate"
)

const defaultEventBuffer = 64

// WordlistProvider resolves the dictionary referenced by a session configuration.
type WordlistProvider interface {
	Load(path string) ([]string, error)
	Checksum(path string) (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocator sets the locator consulted before a run starts or resumes.
func WithLocator(l target.Locator) Option {
	return func(e *Engine) { e.locator = l }
}

// WithWordlistProvider sets the provider used to load dictionaries by path.
func WithWordlistProvider(p WordlistProvider) Option {
	return func(e *Engine) { e.wordlists = p }
}

// WithRateLimit caps the number of trials per second. Zero or less disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(e *Engine) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEventBuffer sets the capacity of the event channel.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.eventBuffer = n
		}
	}
}

// WithRecorder attaches a recorder that receives every emitted event.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}
