package target

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAny(t *testing.T) {
	assert.NoError(t, Any{}.Locate(context.Background(), "whatever"))
}

func TestStatic(t *testing.T) {
	s := Static{"lab-ap", "guest"}

	require.NoError(t, s.Locate(context.Background(), "guest"))
	require.ErrorIs(t, s.Locate(context.Background(), "office"), ErrNotFound)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.txt")
	require.NoError(t, os.WriteFile(path, []byte("lab-ap\n\n  guest  \n"), 0o600))

	f := File{Path: path}
	require.NoError(t, f.Locate(context.Background(), "lab-ap"))
	require.NoError(t, f.Locate(context.Background(), "guest"))
	require.ErrorIs(t, f.Locate(context.Background(), "office"), ErrNotFound)

	// A later scan that no longer sees the target is honored.
	require.NoError(t, os.WriteFile(path, []byte("guest\n"), 0o600))
	require.ErrorIs(t, f.Locate(context.Background(), "lab-ap"), ErrNotFound)
}

func TestFile_MissingScanResults(t *testing.T) {
	f := File{Path: filepath.Join(t.TempDir(), "absent.txt")}

	err := f.Locate(context.Background(), "lab-ap")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, File{Path: "unused"}.Locate(ctx, "x"), context.Canceled)
}
