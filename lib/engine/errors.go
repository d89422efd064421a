package engine

import "errors"

var (
	// ErrSessionActive is returned when a run is requested while another is running or paused.
	ErrSessionActive = errors.New("an attack session is already active")
	// ErrNoTrial is returned when no credential trial collaborator is supplied.
	ErrNoTrial = errors.New("no credential trial configured")
	// ErrNoTarget is returned when the target identifier is blank.
	ErrNoTarget = errors.New("no target specified")
	// ErrNoWordlistProvider is returned when a wordlist path must be loaded but no provider is set.
	ErrNoWordlistProvider = errors.New("no wordlist provider configured")
	// ErrWordlistChanged is returned when a resumed session's wordlist no longer matches its checksum.
	ErrWordlistChanged = errors.New("wordlist changed since the session was checkpointed")
)
