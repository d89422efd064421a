// Package checkpoint persists attack-session state so a paused or interrupted run can resume
// at exactly the first candidate it has not yet tried.
package checkpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
)

// ErrInvalidSession is returned when a session record violates its invariants.
var ErrInvalidSession = errors.New("invalid session")

// Session is the durable checkpoint of one attack run.
// CurrentIndex is the ordinal of the last attempted candidate, so the next run restarts
// generation at offset CurrentIndex. AttemptCount always equals CurrentIndex.
type Session struct {
	ID           string           `json:"id"`
	Target       string           `json:"target"`
	Config       candidate.Config `json:"config"`
	StartTime    time.Time        `json:"start_time"`
	CurrentIndex int64            `json:"current_index"`
	AttemptCount int64            `json:"attempt_count"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewSession creates a session for target positioned before its first candidate.
func NewSession(target string, cfg candidate.Config, start time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Target:    target,
		Config:    cfg,
		StartTime: start,
		UpdatedAt: start,
	}
}

// Advance records that the candidate at ordinal index has been attempted.
// The index never moves backwards.
func (s *Session) Advance(index int64) {
	if index < s.CurrentIndex {
		return
	}

	s.CurrentIndex = index
	s.AttemptCount = index
}

// Validate checks the invariants a checkpoint must satisfy before it can be resumed.
func (s *Session) Validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil session", ErrInvalidSession)
	case s.Target == "":
		return fmt.Errorf("%w: missing target", ErrInvalidSession)
	case s.CurrentIndex < 0:
		return fmt.Errorf("%w: negative index %d", ErrInvalidSession, s.CurrentIndex)
	case s.AttemptCount != s.CurrentIndex:
		return fmt.Errorf("%w: attempt count %d does not match index %d",
			ErrInvalidSession, s.AttemptCount, s.CurrentIndex)
	}

	return nil
}

// Clone returns a copy safe to hand to another goroutine.
func (s *Session) Clone() *Session {
	c := *s
	c.Config.Words = nil

	return &c
}
