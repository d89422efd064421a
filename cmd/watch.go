package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/display"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/eventlog"
)

var watchOpts struct { //nolint:gochecknoglobals // bound to watch flags
	fromStart bool
	untilDone bool
}

var watchCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "watch <target>",
	Short: "Follow the event log of an attack running in another process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tgt := strings.TrimSpace(args[0])
		path := eventlog.Path(appstate.State.EventsPath, tgt)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appstate.Logger.Info("Watching attack", "target", tgt, "log", path)

		return eventlog.Follow(ctx, path, watchOpts.fromStart, watchEvent)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.fromStart, "from-start", false, "replay the whole log before following")
	watchCmd.Flags().BoolVar(&watchOpts.untilDone, "until-done", false, "stop once the run pauses or finishes")
}

func watchEvent(ev engine.Event) error {
	display.Event(ev)

	if watchOpts.untilDone && (ev.Kind == engine.EventOutcome || ev.Kind == engine.EventPaused) {
		return eventlog.ErrStop
	}

	return nil
}
