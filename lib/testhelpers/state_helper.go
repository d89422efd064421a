// Package testhelpers provides reusable test utilities and helpers for testing keysmith.
package testhelpers

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/unclesp1d3r/keysmith/appstate"
)

const dirPerm os.FileMode = 0o755

func mustMkdirAll(path string) {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		panic(err)
	}
}

// SetupTestState initializes appstate.State with test values.
// It creates temporary directories for all path fields and returns a cleanup function
// that removes them and resets state.
func SetupTestState() func() {
	testDataDir, err := os.MkdirTemp(os.TempDir(), "keysmith-test-*")
	if err != nil {
		panic(err)
	}

	appstate.State.DataPath = filepath.Join(testDataDir, "data")
	appstate.State.SessionsPath = filepath.Join(testDataDir, "sessions")
	appstate.State.ListsPath = filepath.Join(testDataDir, "lists")
	appstate.State.ExportPath = filepath.Join(testDataDir, "exports")
	appstate.State.EventsPath = filepath.Join(testDataDir, "events")
	appstate.State.LocksPath = filepath.Join(testDataDir, "locks")
	appstate.State.ScanFile = ""
	appstate.State.Debug = false
	appstate.State.ExtraDebugging = false
	appstate.State.TrialTimeout = time.Second
	appstate.State.TrialRate = 0
	appstate.State.RecordEvents = false
	appstate.State.DefaultCharset = "ab"
	appstate.State.DefaultMinLen = 1
	appstate.State.DefaultMaxLen = 2
	appstate.State.DownloadRetries = 1
	appstate.State.StatusInterval = time.Minute

	mustMkdirAll(appstate.State.DataPath)
	mustMkdirAll(appstate.State.SessionsPath)
	mustMkdirAll(appstate.State.ListsPath)
	mustMkdirAll(appstate.State.ExportPath)
	mustMkdirAll(appstate.State.EventsPath)
	mustMkdirAll(appstate.State.LocksPath)

	return func() {
		_ = os.RemoveAll(testDataDir)
		ResetTestState()
		httpmock.DeactivateAndReset()
	}
}

// ResetTestState resets appstate.State to zero values without cleanup.
func ResetTestState() {
	appstate.State.DataPath = ""
	appstate.State.SessionsPath = ""
	appstate.State.ListsPath = ""
	appstate.State.ExportPath = ""
	appstate.State.EventsPath = ""
	appstate.State.LocksPath = ""
	appstate.State.ScanFile = ""
	appstate.State.Debug = false
	appstate.State.ExtraDebugging = false
	appstate.State.TrialTimeout = 0
	appstate.State.TrialRate = 0
	appstate.State.RecordEvents = false
	appstate.State.DefaultCharset = ""
	appstate.State.DefaultMinLen = 0
	appstate.State.DefaultMaxLen = 0
	appstate.State.DownloadRetries = 0
	appstate.State.StatusInterval = 0
	appstate.State.SetCurrentActivity("")
}

// WithTestState is a convenience wrapper that sets up state, runs the test function,
// and cleans up automatically.
func WithTestState(testFunc func()) {
	cleanup := SetupTestState()
	defer cleanup()
	testFunc()
}
