package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/eventlog"
)

// errNoOutcome is returned when a target's event log holds no finished run.
var errNoOutcome = errors.New("no finished attack recorded")

var exportCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "export <target> [destination]",
	Short: "Export the credential found by the last attack on a target",
	Long: "Export the credential from the most recent finished attack recorded in the target's\n" +
		"event log. Destinations ending in .json get a JSON record; others get plain text.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		tgt := strings.TrimSpace(args[0])

		out, err := lastOutcome(eventlog.Path(appstate.State.EventsPath, tgt))
		if err != nil {
			return fmt.Errorf("exporting %q: %w", tgt, err)
		}

		dest := ""
		if len(args) == 2 {
			dest = args[1]
		}

		return exportOutcome(*out, dest)
	},
}

// lastOutcome returns the most recent outcome recorded in the event log at path.
func lastOutcome(path string) (*engine.Outcome, error) {
	events, err := eventlog.Read(path)
	if err != nil {
		return nil, err
	}

	for _, ev := range slices.Backward(events) {
		if ev.Kind == engine.EventOutcome && ev.Outcome != nil {
			return ev.Outcome, nil
		}
	}

	return nil, errNoOutcome
}
