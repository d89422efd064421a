package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/display"
	"github.com/unclesp1d3r/keysmith/lib/wordlist"
)

// errSavedSession is returned when a fresh attack would overwrite a checkpoint.
var errSavedSession = errors.New("target has a saved session")

type attackOptions struct {
	strategy string
	wordlist string
	charset  string
	minLen   int
	maxLen   int
	force    bool
	trial    trialFlags
	export   exportFlags
}

var attackOpts attackOptions //nolint:gochecknoglobals // bound to attack flags

var attackCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "attack <target>",
	Short: "Start a new attack session against a target",
	Long: "Start a new attack session. Press Ctrl+C once to pause and checkpoint the session,\n" +
		"twice to cancel it.",
	Example: "  keysmith attack HomeNetwork -s dictionary -w rockyou.txt --command ./try.sh\n" +
		"  keysmith attack Lab -s brute-force --charset 0123456789 --min 4 --max 6 --trial http --url http://verifier/try",
	Args: cobra.ExactArgs(1),
	RunE: runAttack,
}

func init() {
	fl := attackCmd.Flags()
	fl.StringVarP(&attackOpts.strategy, "strategy", "s", string(candidate.StrategyDictionary), "dictionary, brute-force or hybrid")
	fl.StringVarP(&attackOpts.wordlist, "wordlist", "w", "", "password list path, or a list name in the lists directory")
	fl.StringVar(&attackOpts.charset, "charset", "", "brute-force charset (default from config)")
	fl.IntVar(&attackOpts.minLen, "min", 0, "brute-force minimum length (default from config)")
	fl.IntVar(&attackOpts.maxLen, "max", 0, "brute-force maximum length (default from config)")
	fl.BoolVar(&attackOpts.force, "force", false, "discard an existing saved session for the target")
	attackOpts.trial.register(attackCmd)
	attackOpts.export.register(attackCmd)
}

func runAttack(cmd *cobra.Command, args []string) error {
	tgt := strings.TrimSpace(args[0])

	cfg, err := attackOpts.config()
	if err != nil {
		return err
	}

	tr, err := attackOpts.trial.build()
	if err != nil {
		return err
	}

	run, err := openRun(tgt, attackOpts.trial.trialRate(), !attackOpts.trial.noBar)
	if err != nil {
		return err
	}
	defer run.close()

	if _, err := run.store.Load(tgt); err == nil && !attackOpts.force {
		return fmt.Errorf("%w: %q (run 'keysmith resume %s' or pass --force)", errSavedSession, tgt, tgt)
	} else if err != nil && !errors.Is(err, checkpoint.ErrNotFound) && !attackOpts.force {
		return err
	}

	display.Startup()
	total := estimateTotal(cfg)
	display.SessionStarted(tgt, cfg, total)

	if err := run.engine.Start(cmd.Context(), tgt, cfg, tr); err != nil {
		return err
	}

	out, err := run.follow(cmd.Context(), 0, total)
	if err != nil {
		return err
	}

	return attackOpts.export.apply(out)
}

// config builds the candidate configuration from flags and configured defaults.
func (o *attackOptions) config() (candidate.Config, error) {
	strategy, err := candidate.ParseStrategy(o.strategy)
	if err != nil {
		return candidate.Config{}, err
	}

	cfg := candidate.Config{
		Strategy:  strategy,
		Charset:   o.charset,
		MinLength: o.minLen,
		MaxLength: o.maxLen,
	}

	if strategy.UsesBruteForce() {
		if cfg.Charset == "" {
			cfg.Charset = appstate.State.DefaultCharset
		}
		if cfg.MinLength == 0 {
			cfg.MinLength = appstate.State.DefaultMinLen
		}
		if cfg.MaxLength == 0 {
			cfg.MaxLength = max(appstate.State.DefaultMaxLen, cfg.MinLength)
		}
	}

	if strategy.UsesDictionary() {
		if o.wordlist == "" {
			return candidate.Config{}, fmt.Errorf("%w: --wordlist is required for %s", candidate.ErrEmptyDictionary, strategy)
		}

		path, err := wordlist.Resolve(appstate.State.ListsPath, o.wordlist)
		if err != nil {
			return candidate.Config{}, err
		}
		cfg.WordlistPath = path
	}

	return cfg, nil
}
