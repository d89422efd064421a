package trial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/lib/engine"
)

func TestSecret(t *testing.T) {
	s := Secret{Value: "hunter2"}
	require.NoError(t, s.Available(context.Background()))

	ok, err := s.Try(context.Background(), "any", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Try(context.Background(), "any", "hunter")
	assert.False(t, ok)

	scoped := Secret{Value: "hunter2", Target: "HomeNetwork"}
	ok, _ = scoped.Try(context.Background(), "Neighbour", "hunter2")
	assert.False(t, ok, "secret is scoped to its target")

	require.ErrorIs(t, Secret{}.Available(context.Background()), ErrNoSecret)
}

func TestNew(t *testing.T) {
	cmd, err := New(Options{Kind: "command", Command: "/bin/true", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &Command{}, cmd)

	verifier, err := New(Options{Kind: "HTTP", URL: "http://localhost/verify"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPVerifier{}, verifier)

	secret, err := New(Options{Kind: KindSecret, Secret: "x"})
	require.NoError(t, err)
	assert.Equal(t, Secret{Value: "x"}, secret)

	_, err = New(Options{Kind: "carrier-pigeon"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestAvailable(t *testing.T) {
	require.ErrorIs(t, Available(context.Background(), nil), engine.ErrNoTrial)
	require.ErrorIs(t, Available(context.Background(), Secret{}), ErrNoSecret)
	require.NoError(t, Available(context.Background(), engine.TrialFunc(func(context.Context, string, string) (bool, error) {
		return false, nil
	})))
}
