// Package lockfile enforces one active attack session per target across processes.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/duke-git/lancet/v2/convertor"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/utils"
)

const (
	lockFilePermissions = 0o600
	lockDirPermissions  = 0o700
	lockExt             = ".lock"
)

// ErrLocked is returned when another live process holds the target's lock.
var ErrLocked = errors.New("target is locked by another keysmith process")

// Lock is a held per-target lock file.
type Lock struct {
	path string
	pid  string
}

// PathFor returns the lock file used for target in dir.
func PathFor(dir, target string) string {
	return filepath.Join(dir, utils.TargetFileName(target, lockExt))
}

// Acquire takes the lock for target. A lock left behind by a dead process is removed first.
func Acquire(dir, target string) (*Lock, error) {
	if err := os.MkdirAll(dir, lockDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := PathFor(dir, target)
	pid := convertor.ToString(os.Getpid())

	for range 2 {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, lockFilePermissions)
		if err == nil {
			_, werr := f.WriteString(pid)
			cerr := f.Close()
			if err := errors.Join(werr, cerr); err != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", err)
			}

			return &Lock{path: path, pid: pid}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if CheckForExistingProcess(path) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrLocked, target, path)
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: %s (%s)", ErrLocked, target, path)
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	content, err := fileutil.ReadFileToString(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read lock file: %w", err)
	}

	if strutil.Trim(content) != l.pid {
		appstate.Logger.Warn("Lock file taken over by another process, leaving it", "path", l.path)
		return nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	return nil
}

// CheckForExistingProcess reports whether the lock file at path belongs to a running process.
// Unreadable or malformed lock files are treated as held.
func CheckForExistingProcess(path string) bool {
	if !fileutil.IsExist(path) {
		return false
	}

	pidString, err := fileutil.ReadFileToString(path)
	if err != nil {
		appstate.Logger.Error("Error reading lock file", "path", path)
		return true
	}

	pidInt64, err := strconv.ParseInt(strutil.Trim(pidString), 10, 32)
	if err != nil {
		appstate.Logger.Error("Error converting PID to integer, or PID is too large for int32",
			"pid", pidString, "error", err)
		return true
	}
	pidValue := int32(pidInt64)

	pidRunning, err := process.PidExists(pidValue)
	if err != nil {
		appstate.Logger.Error("Error checking if process is running", "pid", pidValue)
		return true
	}

	if !pidRunning {
		appstate.Logger.Warn("Existing process is not running, cleaning up lock file", "pid", pidValue, "path", path)
	}

	return pidRunning
}
