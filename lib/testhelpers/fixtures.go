package testhelpers

import (
	"sync"
	"time"

	"github.com/unclesp1d3r/keysmith/lib/candidate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
)

// TestTarget is the target identifier used across tests.
const TestTarget = "HomeNetwork"

// NewDictionaryConfig returns a dictionary configuration over words.
func NewDictionaryConfig(words ...string) candidate.Config {
	return candidate.Config{
		Strategy: candidate.StrategyDictionary,
		Words:    words,
	}
}

// NewBruteForceConfig returns a brute-force configuration.
func NewBruteForceConfig(charset string, minLen, maxLen int) candidate.Config {
	return candidate.Config{
		Strategy:  candidate.StrategyBruteForce,
		Charset:   charset,
		MinLength: minLen,
		MaxLength: maxLen,
	}
}

// NewTestSession returns a valid session for target checkpointed at index.
func NewTestSession(target string, cfg candidate.Config, index int64) *checkpoint.Session {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sess := checkpoint.NewSession(target, cfg, start)
	sess.Advance(index)
	sess.UpdatedAt = start.Add(time.Minute)
	return sess
}

// SteppingClock returns a clock that advances by step on every call.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var (
		mu    sync.Mutex
		calls int64
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := start.Add(time.Duration(calls) * step)
		calls++
		return now
	}
}
