// Package trial provides credential trial adapters usable by the attack engine.
package trial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unclesp1d3r/keysmith/lib/engine"
)

// Kind names a trial adapter.
type Kind string

// Supported adapters.
const (
	KindCommand Kind = "command"
	KindHTTP    Kind = "http"
	KindSecret  Kind = "secret"
)

// ErrUnknownKind is returned by New for an unsupported adapter name.
var ErrUnknownKind = errors.New("unknown trial kind")

// Options selects and configures a trial adapter.
type Options struct {
	Kind    Kind
	Command string
	Args    []string
	URL     string
	Secret  string
	Timeout time.Duration
}

// New builds the adapter described by opts.
func New(opts Options) (engine.CredentialTrial, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case KindCommand:
		return NewCommand(opts.Command, opts.Timeout, opts.Args...), nil
	case KindHTTP:
		return NewHTTPVerifier(opts.URL, opts.Timeout), nil
	case KindSecret:
		return Secret{Value: opts.Secret}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}

// Available runs the trial's own availability check, if it has one.
func Available(ctx context.Context, t engine.CredentialTrial) error {
	if t == nil {
		return engine.ErrNoTrial
	}

	if pc, ok := t.(engine.Prechecker); ok {
		return pc.Available(ctx)
	}

	return nil
}
