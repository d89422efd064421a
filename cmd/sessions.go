package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/display"
	"github.com/unclesp1d3r/keysmith/lib/lockfile"
)

var sessionsCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect and discard saved attack sessions",
}

var sessionsListCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sessions, err := sessionStore().List()
		if err != nil {
			return err
		}

		return display.Sessions(cmd.OutOrStdout(), sessions)
	},
}

var sessionsShowCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "show <target>",
	Short: "Show the details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := sessionStore().Load(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}

		return display.Session(cmd.OutOrStdout(), sess)
	},
}

var sessionsDiscardCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:     "discard <target>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved session",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return discardSession(strings.TrimSpace(args[0]))
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDiscardCmd)
}

func sessionStore() *checkpoint.FileStore {
	return checkpoint.NewFileStore(appstate.State.SessionsPath)
}

// discardSession deletes the checkpoint for tgt unless a live process is attacking it.
func discardSession(tgt string) error {
	lock, err := lockfile.Acquire(appstate.State.LocksPath, tgt)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			appstate.Logger.Warn("Failed to release lock", "path", lock.Path(), "error", err)
		}
	}()

	store := sessionStore()
	if _, err := store.Load(tgt); err != nil && !errors.Is(err, checkpoint.ErrCorrupt) {
		return err
	}

	if err := store.Delete(tgt); err != nil {
		return fmt.Errorf("discarding session for %q: %w", tgt, err)
	}

	appstate.Logger.Info("Session discarded", "target", tgt)

	return nil
}
