package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/display"
)

type resumeOptions struct {
	trial  trialFlags
	export exportFlags
}

var resumeOpts resumeOptions //nolint:gochecknoglobals // bound to resume flags

var resumeCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "resume <target>",
	Short: "Resume a saved attack session",
	Long: "Resume a checkpointed session from the last attempted candidate. The wordlist is\n" +
		"reloaded and must be unchanged since the session started.",
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeOpts.trial.register(resumeCmd)
	resumeOpts.export.register(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	tgt := strings.TrimSpace(args[0])

	tr, err := resumeOpts.trial.build()
	if err != nil {
		return err
	}

	run, err := openRun(tgt, resumeOpts.trial.trialRate(), !resumeOpts.trial.noBar)
	if err != nil {
		return err
	}
	defer run.close()

	sess, err := run.store.Load(tgt)
	if err != nil {
		return fmt.Errorf("loading session for %q: %w", tgt, err)
	}

	display.Startup()
	display.SessionResumed(sess)

	total := estimateTotal(sess.Config)
	if total != nil {
		appstate.Logger.Info("Candidates remaining", "target", tgt,
			"remaining", display.CandidateCount(remaining(total, sess.CurrentIndex)))
	}

	if err := run.engine.Resume(cmd.Context(), sess, tr); err != nil {
		return err
	}

	out, err := run.follow(cmd.Context(), sess.CurrentIndex, total)
	if err != nil {
		return err
	}

	return resumeOpts.export.apply(out)
}

// remaining returns total minus the candidates already tried, floored at zero.
func remaining(total *big.Int, tried int64) *big.Int {
	left := new(big.Int).Sub(total, big.NewInt(tried))
	if left.Sign() < 0 {
		return new(big.Int)
	}

	return left
}
