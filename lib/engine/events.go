package engine

import (
	"time"

	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
)

// State is the lifecycle state of an attack session.
type State string

// Engine states. Succeeded, Exhausted, Cancelled and Failed are terminal.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateSucceeded State = "succeeded"
	StateExhausted State = "exhausted"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition is possible for the current run.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateExhausted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// EventKind identifies the payload carried by an Event.
type EventKind string

// Event kinds emitted on the engine's event stream.
const (
	// EventProgress follows every attempt that did not end the run.
	EventProgress EventKind = "progress"
	// EventTrialError reports a single trial that could not be executed; the run continues.
	EventTrialError EventKind = "trial_error"
	// EventWarning reports a non-fatal anomaly such as a failed checkpoint write.
	EventWarning EventKind = "warning"
	// EventRejected reports a start or resume refused before the run began.
	EventRejected EventKind = "rejected"
	// EventPaused reports that the run stopped at a checkpoint and can be resumed.
	EventPaused EventKind = "paused"
	// EventOutcome is the single terminal event of a run.
	EventOutcome EventKind = "outcome"
)

// Progress is a best-effort view of how far a run has come.
// Percent and ETA are linear extrapolations and are only meaningful when their Known flag is set.
type Progress struct {
	Index          int64         `json:"index"`
	Total          int64         `json:"total"`
	Percent        int           `json:"percent"`
	PercentKnown   bool          `json:"percent_known"`
	Elapsed        time.Duration `json:"elapsed"`
	ETA            time.Duration `json:"eta"`
	ETAKnown       bool          `json:"eta_known"`
	Candidate      string        `json:"candidate"`
	RecentFailures []string      `json:"recent_failures,omitempty"`
}

// Outcome is the terminal result of a run. Exactly one is produced per run.
type Outcome struct {
	SessionID     string        `json:"session_id"`
	Target        string        `json:"target"`
	State         State         `json:"state"`
	Found         bool          `json:"found"`
	Candidate     string        `json:"candidate,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
	AttemptsTried int64         `json:"attempts_tried"`
}

// ElapsedSeconds returns the elapsed time in seconds.
func (o Outcome) ElapsedSeconds() float64 {
	return o.Elapsed.Seconds()
}

// Event is one entry on the engine's ordered event stream.
type Event struct {
	Kind     EventKind           `json:"kind"`
	Time     time.Time           `json:"time"`
	Target   string              `json:"target"`
	Index    int64               `json:"index,omitempty"`
	Progress *Progress           `json:"progress,omitempty"`
	Outcome  *Outcome            `json:"outcome,omitempty"`
	Session  *checkpoint.Session `json:"session,omitempty"`
	Message  string              `json:"message,omitempty"`
	Err      error               `json:"-"`
}

// Recorder receives a copy of every event, for example to keep a durable event log.
type Recorder interface {
	Record(ev Event) error
}
