package trial

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/lib/testhelpers"
)

const checkScript = `#!/bin/sh
read -r cand
if [ "$cand" = "crash" ]; then
  echo "radio went away" >&2
  exit 7
fi
if [ "$cand" = "slow" ]; then
  sleep 5
fi
if [ "$cand" = "hunter2" ] && [ "$KEYSMITH_TARGET" = "HomeNetwork" ]; then
  exit 0
fi
exit 1
`

func writeScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "check.sh")
	require.NoError(t, os.WriteFile(path, []byte(checkScript), 0o700))
	return path
}

func TestCommand_Try(t *testing.T) {
	script := writeScript(t)
	cmd := NewCommand(script, 2*time.Second)

	tests := []struct {
		name      string
		target    string
		candidate string
		want      bool
		wantErr   error
	}{
		{name: "match", target: testhelpers.TestTarget, candidate: "hunter2", want: true},
		{name: "wrong candidate", target: testhelpers.TestTarget, candidate: "letmein"},
		{name: "wrong target", target: "Elsewhere", candidate: "hunter2"},
		{name: "unexpected exit", target: testhelpers.TestTarget, candidate: "crash", wantErr: ErrUnexpectedExit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cmd.Try(context.Background(), tt.target, tt.candidate)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_UnexpectedExitIncludesStderr(t *testing.T) {
	cmd := NewCommand(writeScript(t), 2*time.Second)

	_, err := cmd.Try(context.Background(), testhelpers.TestTarget, "crash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 7")
	assert.Contains(t, err.Error(), "radio went away")
}

func TestCommand_Timeout(t *testing.T) {
	cmd := NewCommand(writeScript(t), 100*time.Millisecond)

	got, err := cmd.Try(context.Background(), testhelpers.TestTarget, "slow")
	require.ErrorIs(t, err, ErrTrialTimeout)
	assert.False(t, got)
}

func TestCommand_ParentCancellation(t *testing.T) {
	cmd := NewCommand(writeScript(t), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cmd.Try(ctx, testhelpers.TestTarget, "slow")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCommand_Available(t *testing.T) {
	dir := t.TempDir()
	plain := testhelpers.CreateTestFile(t, dir, "plain.txt", []byte("not a program"))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "blank", path: " ", wantErr: true},
		{name: "missing file", path: filepath.Join(dir, "nope"), wantErr: true},
		{name: "not executable", path: plain, wantErr: true},
		{name: "directory", path: dir + string(os.PathSeparator), wantErr: true},
		{name: "not on PATH", path: "keysmith-no-such-binary", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCommand(tt.path, time.Second).Available(context.Background())
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCommandNotFound)
				return
			}
			require.NoError(t, err)
		})
	}

	require.NoError(t, NewCommand(writeScript(t), time.Second).Available(context.Background()))
}

func TestClassifyExitCode(t *testing.T) {
	tests := []struct {
		exitCode      int
		wantStatus    string
		wantMatch     bool
		wantAttempted bool
	}{
		{exitCode: 0, wantStatus: "match", wantMatch: true, wantAttempted: true},
		{exitCode: 1, wantStatus: "no_match", wantAttempted: true},
		{exitCode: 2, wantStatus: "error"},
		{exitCode: -1, wantStatus: "error"},
	}

	for _, tt := range tests {
		info := ClassifyExitCode(tt.exitCode)
		assert.Equal(t, tt.wantStatus, info.Status, "exit code %d", tt.exitCode)
		assert.Equal(t, tt.wantMatch, info.Match, "exit code %d", tt.exitCode)
		assert.Equal(t, tt.wantAttempted, info.Attempted, "exit code %d", tt.exitCode)
		assert.Equal(t, tt.exitCode, info.ExitCode)
	}
}
