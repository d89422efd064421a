package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/lib/engine"
)

func succeeded() engine.Outcome {
	return engine.Outcome{
		Target:        "HomeNetwork",
		State:         engine.StateSucceeded,
		Found:         true,
		Candidate:     "hunter2",
		Elapsed:       12340 * time.Millisecond,
		AttemptsTried: 1234567,
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		outcome  engine.Outcome
		expected string
	}{
		{
			name:     "succeeded",
			outcome:  succeeded(),
			expected: "Success! Password for 'HomeNetwork' is: hunter2\nTried 1,234,567 passwords in 12.3 seconds.",
		},
		{
			name: "exhausted",
			outcome: engine.Outcome{
				Target: "HomeNetwork", State: engine.StateExhausted, AttemptsTried: 3, Elapsed: 1500 * time.Millisecond,
			},
			expected: "Failed. No valid password found for 'HomeNetwork'.\nTried 3 passwords in 1.5 seconds.",
		},
		{
			name:     "cancelled",
			outcome:  engine.Outcome{Target: "Cafe", State: engine.StateCancelled, AttemptsTried: 40},
			expected: "Cancelled. Attack on 'Cafe' was stopped.\nTried 40 passwords in 0.0 seconds.",
		},
		{
			name:     "failed",
			outcome:  engine.Outcome{Target: "Cafe", State: engine.StateFailed, AttemptsTried: 2, Elapsed: time.Second},
			expected: "Error. Attack on 'Cafe' failed; its last checkpoint was kept.\nTried 2 passwords in 1.0 seconds.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.outcome))
		})
	}
}

func TestExport_Text(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "home_result.txt")

	require.NoError(t, Export(succeeded(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "SSID: HomeNetwork\nPassword: hunter2\nAttempts: 1234567\nTime: 12.3 seconds\n", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestExport_JSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "result.JSON")

	require.NoError(t, Export(succeeded(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "HomeNetwork", record.SSID)
	assert.Equal(t, "hunter2", record.Password)
	assert.Equal(t, int64(1234567), record.Attempts)
	assert.InDelta(t, 12.34, record.ElapsedSeconds, 1e-9)
	assert.False(t, record.ExportedAt.IsZero())
}

func TestExport_NothingToExport(t *testing.T) {
	dir := t.TempDir()

	for _, state := range []engine.State{engine.StateExhausted, engine.StateCancelled, engine.StateFailed} {
		dest := filepath.Join(dir, string(state)+".txt")
		err := Export(engine.Outcome{Target: "HomeNetwork", State: state}, dest)
		require.ErrorIs(t, err, ErrNothingToExport, state)
		assert.NoFileExists(t, dest)
	}
}

func TestDefaultPath(t *testing.T) {
	got := DefaultPath("/exports", "Cafe Wi-Fi")
	assert.Equal(t, "/exports", filepath.Dir(got))
	assert.Contains(t, filepath.Base(got), "Cafe_Wi-Fi-")
	assert.Equal(t, "_result.txt", filepath.Base(got)[len(filepath.Base(got))-len("_result.txt"):])
}
