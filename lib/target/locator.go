// Package target locates attack targets. Scanning itself is done by an external tool; keysmith
// only asks whether a target is still visible before it starts or resumes a session.
package target

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/duke-git/lancet/v2/fileutil"
)

// ErrNotFound is returned when a target is no longer visible.
var ErrNotFound = errors.New("target not found")

// Locator reports whether a target can currently be reached.
type Locator interface {
	Locate(ctx context.Context, id string) error
}

// Any accepts every target.
type Any struct{}

// Locate always succeeds.
func (Any) Locate(context.Context, string) error { return nil }

// Static locates targets from a fixed list.
type Static []string

// Locate succeeds when id is in the list.
func (s Static) Locate(_ context.Context, id string) error {
	if slices.Contains(s, id) {
		return nil
	}

	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

// File locates targets from a scan-results file with one identifier per line.
// The file is re-read on every call so a fresh scan is always honored.
type File struct {
	Path string
}

// Locate reads the scan file and checks for id.
func (f File) Locate(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines, err := fileutil.ReadFileByLine(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read scan results %q: %w", f.Path, err)
	}

	want := strings.TrimSpace(id)
	for _, line := range lines {
		if strings.TrimSpace(line) == want {
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
