package trial

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrNoSecret is returned when a Secret trial has nothing to compare against.
var ErrNoSecret = errors.New("no secret configured")

// Secret matches a single known passphrase. It is meant for dry runs and demonstrations.
type Secret struct {
	Value string
	// Target restricts the match to one target when set.
	Target string
}

// Available reports ErrNoSecret for an empty secret.
func (s Secret) Available(context.Context) error {
	if s.Value == "" {
		return ErrNoSecret
	}

	return nil
}

// Try compares candidate with the secret.
func (s Secret) Try(_ context.Context, target, candidate string) (bool, error) {
	if s.Target != "" && s.Target != target {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(s.Value), []byte(candidate)) == 1, nil
}
