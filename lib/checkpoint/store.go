package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/utils"
)

const (
	checkpointFilePermissions = 0o600 // Checkpoints may reference wordlists, keep them private
	checkpointDirPermissions  = 0o700
	checkpointExt             = ".session.json"
)

var (
	// ErrNotFound is returned when no checkpoint exists for a target.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrCorrupt is returned when a checkpoint exists but cannot be decoded.
	ErrCorrupt = errors.New("checkpoint is corrupt")
)

// Store is a keyed durable record of sessions. Any medium satisfying it will do.
type Store interface {
	Save(sess *Session) error
	Load(target string) (*Session, error)
	Delete(target string) error
	List() ([]*Session, error)
}

// FileStore keeps one JSON checkpoint per target in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the checkpoint file used for target.
func (fs *FileStore) Path(target string) string {
	return filepath.Join(fs.dir, utils.TargetFileName(target, checkpointExt))
}

// Save marshals the session to JSON and writes it atomically via a temporary file and rename.
func (fs *FileStore) Save(sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(fs.dir, checkpointDirPermissions); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	record := sess.Clone()
	record.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := utils.WriteFileAtomic(fs.Path(sess.Target), data, checkpointFilePermissions); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	if appstate.State.ExtraDebugging {
		appstate.Logger.Debug("Checkpoint saved", "target", sess.Target, "index", sess.CurrentIndex)
	}

	return nil
}

// Load reads the checkpoint for target. It returns ErrNotFound when none exists and
// ErrCorrupt when the file cannot be decoded or violates the session invariants.
func (fs *FileStore) Load(target string) (*Session, error) {
	sess, err := readSession(fs.Path(target))
	if err != nil {
		return nil, err
	}

	if sess.Target != target {
		return nil, fmt.Errorf("%w: checkpoint belongs to %q", ErrCorrupt, sess.Target)
	}

	return sess, nil
}

// Delete removes the checkpoint for target. Removing a missing checkpoint is not an error.
func (fs *FileStore) Delete(target string) error {
	path := fs.Path(target)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}

	return nil
}

// List returns every readable checkpoint, most recently updated first.
// Unreadable files are logged and skipped.
func (fs *FileStore) List() ([]*Session, error) {
	if !fileutil.IsDir(fs.dir) {
		return nil, nil
	}

	names, err := fileutil.ListFileNames(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	sessions := make([]*Session, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, checkpointExt) {
			continue
		}

		sess, err := readSession(filepath.Join(fs.dir, name))
		if err != nil {
			appstate.Logger.Warn("Skipping unreadable checkpoint", "file", name, "error", err)

			continue
		}

		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return &sess, nil
}
