// Package appstate provides common state and configuration structures used across keysmith.
package appstate

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// State represents the configuration and runtime state of the tool.
var State = appState{} //nolint:gochecknoglobals // Global application state

// appState represents the state and configuration settings shared by the keysmith commands.
// The current activity is read by the controller while the attack worker updates it,
// so it is guarded by a sync.RWMutex. Use the getter/setter methods for that field.
type appState struct {
	DataPath        string        // DataPath is the root directory for all keysmith data.
	SessionsPath    string        // SessionsPath is the directory holding session checkpoints.
	ListsPath       string        // ListsPath is the directory holding password lists.
	ExportPath      string        // ExportPath is the default directory for exported results.
	EventsPath      string        // EventsPath is the directory holding per-target event logs.
	LocksPath       string        // LocksPath is the directory holding per-target lock files.
	ScanFile        string        // ScanFile is the file listing currently visible targets (empty accepts any target).
	Debug           bool          // Debug specifies whether keysmith is running in debug mode.
	ExtraDebugging  bool          // ExtraDebugging logs every candidate and trial result. Set once at init.
	TrialTimeout    time.Duration // TrialTimeout bounds a single credential trial.
	TrialRate       float64       // TrialRate caps trials per second (0 disables throttling).
	RecordEvents    bool          // RecordEvents writes engine events to the event log.
	DefaultCharset  string        // DefaultCharset is the brute-force charset used when none is given.
	DefaultMinLen   int           // DefaultMinLen is the brute-force minimum length used when none is given.
	DefaultMaxLen   int           // DefaultMaxLen is the brute-force maximum length used when none is given.
	DownloadRetries int           // DownloadRetries is the max number of wordlist download attempts.
	StatusInterval  time.Duration // StatusInterval spaces progress log lines when no progress bar is drawn.

	currentActivityMu sync.RWMutex
	currentActivity   Activity
}

// Activity represents the current action being carried out by keysmith.
type Activity string

// Activity constants define the different states the tool can be in.
const (
	// CurrentActivityStarting indicates keysmith is starting up.
	CurrentActivityStarting Activity = "starting"
	// CurrentActivityAttacking indicates an attack session is running.
	CurrentActivityAttacking Activity = "attacking"
	// CurrentActivityPaused indicates the attack session has been checkpointed.
	CurrentActivityPaused Activity = "paused"
	// CurrentActivityDownloading indicates a password list is being fetched.
	CurrentActivityDownloading Activity = "downloading"
	// CurrentActivityStopping indicates keysmith is stopping.
	CurrentActivityStopping Activity = "stopping"
)

// GetCurrentActivity returns the current activity (thread-safe).
func (s *appState) GetCurrentActivity() Activity {
	s.currentActivityMu.RLock()
	defer s.currentActivityMu.RUnlock()

	return s.currentActivity
}

// SetCurrentActivity sets the current activity (thread-safe).
func (s *appState) SetCurrentActivity(a Activity) {
	s.currentActivityMu.Lock()
	defer s.currentActivityMu.Unlock()
	s.currentActivity = a
}

// Logger is a shared logging instance configured to output logs at InfoLevel with timestamps to os.Stderr.
var Logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:gochecknoglobals // Global logger instance
	Level:           log.InfoLevel,
	ReportTimestamp: true,
})

// ErrorLogger is a logger instance for logging critical errors with detailed error information.
var ErrorLogger = Logger.With() //nolint:gochecknoglobals // Global error logger instance
