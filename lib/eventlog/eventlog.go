// Package eventlog keeps a durable JSON-lines copy of engine events per target and can follow it.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nxadm/tail"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/utils"
)

const (
	logFilePermissions = 0o600 // Event logs contain candidates
	logDirPermissions  = 0o700
	logExt             = ".jsonl"
)

// ErrStop may be returned by a Follow callback to end following without error.
var ErrStop = errors.New("stop following")

// Path returns the event log file for target in dir.
func Path(dir, target string) string {
	return filepath.Join(dir, utils.TargetFileName(target, logExt))
}

// Recorder appends events to one log file per target. It implements engine.Recorder.
type Recorder struct {
	dir string

	mu    sync.Mutex
	files map[string]*os.File
}

// NewRecorder returns a Recorder writing under dir.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir, files: make(map[string]*os.File)}
}

// Record appends ev as one JSON line. Events without a target are not recorded.
func (r *Recorder) Record(ev engine.Event) error {
	if ev.Target == "" {
		return nil
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.file(ev.Target)
	if err != nil {
		return err
	}

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *Recorder) file(target string) (*os.File, error) {
	if f, ok := r.files[target]; ok {
		return f, nil
	}

	if err := os.MkdirAll(r.dir, logDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	f, err := os.OpenFile(Path(r.dir, target), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	r.files[target] = f

	return f, nil
}

// Close closes every open log file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for target, f := range r.files {
		errs = append(errs, f.Close())
		delete(r.files, target)
	}

	return errors.Join(errs...)
}

// Read returns every event recorded in the log at path.
func Read(path string) ([]engine.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []engine.Event
	dec := json.NewDecoder(f)
	for {
		var ev engine.Event
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}

			return events, fmt.Errorf("failed to decode event log: %w", err)
		}

		events = append(events, ev)
	}
}

// Follow tails the log at path and calls fn for every event until ctx is done or fn returns
// an error. With fromStart unset, only events appended after the call are delivered.
// Malformed lines are logged and skipped.
func Follow(ctx context.Context, path string, fromStart bool, fn func(engine.Event) error) error {
	cfg := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Logger:    tail.DiscardingLogger,
	}
	if !fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	tailer, err := tail.TailFile(path, cfg)
	if err != nil {
		return fmt.Errorf("couldn't tail event log %q: %w", path, err)
	}
	defer tailer.Cleanup()
	defer func() { _ = tailer.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-tailer.Lines:
			if !ok {
				return tailer.Err()
			}

			if line.Err != nil {
				return line.Err
			}

			var ev engine.Event
			if err := json.Unmarshal([]byte(line.Text), &ev); err != nil {
				appstate.Logger.Warn("Skipping malformed event line", "path", path, "error", err)
				continue
			}

			if err := fn(ev); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}

				return err
			}
		}
	}
}
