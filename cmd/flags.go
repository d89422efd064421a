package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/report"
	"github.com/unclesp1d3r/keysmith/lib/trial"
)

// trialFlags selects the credential trial shared by attack and resume.
type trialFlags struct {
	kind    string
	command string
	args    []string
	url     string
	secret  string
	timeout time.Duration
	rate    float64
	noBar   bool
}

func (f *trialFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.kind, "trial", string(trial.KindCommand), "credential trial: command, http or secret")
	fl.StringVar(&f.command, "command", "", "executable run per candidate (candidate on stdin, target in $"+trial.TargetEnv+")")
	fl.StringArrayVar(&f.args, "arg", nil, "argument passed to the trial command (repeatable)")
	fl.StringVar(&f.url, "url", "", "verifier URL for the http trial")
	fl.StringVar(&f.secret, "secret", "", "expected passphrase for the secret trial (or set trial_secret)")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-trial timeout (default from trial_timeout)")
	fl.Float64Var(&f.rate, "rate", -1, "max trials per second, 0 for unthrottled (default from trial_rate)")
	fl.BoolVar(&f.noBar, "no-progress-bar", false, "log progress lines instead of drawing a progress bar")
}

func (f *trialFlags) build() (engine.CredentialTrial, error) {
	timeout := f.timeout
	if timeout <= 0 {
		timeout = appstate.State.TrialTimeout
	}

	secret := f.secret
	if secret == "" {
		secret = viper.GetString("trial_secret")
	}

	t, err := trial.New(trial.Options{
		Kind:    trial.Kind(f.kind),
		Command: f.command,
		Args:    f.args,
		URL:     f.url,
		Secret:  secret,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring credential trial: %w", err)
	}

	return t, nil
}

func (f *trialFlags) trialRate() float64 {
	if f.rate < 0 {
		return appstate.State.TrialRate
	}

	return f.rate
}

// exportFlags controls writing a found credential after a run.
type exportFlags struct {
	enabled bool
	output  string
}

func (f *exportFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.enabled, "export", false, "export the credential when the attack succeeds")
	fl.StringVarP(&f.output, "output", "o", "", "export destination; .json gets a JSON record (implies --export)")
}

// apply exports out when requested. Outcomes without a credential are skipped.
func (f *exportFlags) apply(out *engine.Outcome) error {
	if out == nil || (!f.enabled && f.output == "") {
		return nil
	}

	if out.State != engine.StateSucceeded {
		appstate.Logger.Info("Nothing to export", "state", out.State)
		return nil
	}

	return exportOutcome(*out, f.output)
}

// exportOutcome writes out to dest, or to the default results file when dest is empty.
func exportOutcome(out engine.Outcome, dest string) error {
	if dest == "" {
		dest = report.DefaultPath(appstate.State.ExportPath, out.Target)
	}

	if err := report.Export(out, dest); err != nil {
		return err
	}

	appstate.Logger.Info("Result exported", "path", dest)

	return nil
}
