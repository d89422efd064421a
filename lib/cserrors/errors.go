// Package cserrors classifies and logs the errors an attack session can raise.
// Only precondition and resume failures halt a run; everything else degrades gracefully.
package cserrors

import (
	"context"
	"errors"

	"github.com/unclesp1d3r/keysmith/appstate"
)

// Category groups errors by how the controller should react to them.
type Category string

// Error categories.
const (
	// CategoryPrecondition errors are reported before a run starts; no state is mutated.
	CategoryPrecondition Category = "precondition"
	// CategoryTransient errors affect a single candidate trial, which counts as a non-match.
	CategoryTransient Category = "transient"
	// CategoryPersistence errors come from checkpoint reads or writes.
	CategoryPersistence Category = "persistence"
	// CategoryResume errors stop a resume; the controller may offer a fresh run instead.
	CategoryResume Category = "resume"
	// CategoryUnknown is used for anything not classified above.
	CategoryUnknown Category = "unknown"
)

var (
	// ErrPrecondition marks errors raised before a run enters the running state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrTransient marks a failed attempt to execute a single credential trial.
	ErrTransient = errors.New("transient trial failure")
	// ErrPersistence marks a checkpoint read or write failure.
	ErrPersistence = errors.New("checkpoint persistence failure")
	// ErrResume marks a failure to restore a saved session.
	ErrResume = errors.New("resume failed")
)

// Classify returns the category of err.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrPrecondition):
		return CategoryPrecondition
	case errors.Is(err, ErrResume):
		return CategoryResume
	case errors.Is(err, ErrPersistence):
		return CategoryPersistence
	case errors.Is(err, ErrTransient):
		return CategoryTransient
	default:
		return CategoryUnknown
	}
}

// IsFatal reports whether err halts a run outright.
func IsFatal(err error) bool {
	switch Classify(err) {
	case CategoryPrecondition, CategoryResume:
		return true
	default:
		return false
	}
}

// LogError logs an error message with its category and returns the original error for further handling.
// Context cancellation is expected during shutdown and is logged at debug level only.
func LogError(message string, err error, keyvals ...any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		appstate.Logger.Debug(message, append([]any{"error", err}, keyvals...)...)

		return err
	}

	fields := append([]any{"error", err, "category", Classify(err)}, keyvals...)
	if IsFatal(err) {
		appstate.ErrorLogger.Error(message, fields...)
	} else {
		appstate.Logger.Warn(message, fields...)
	}

	return err
}
