// Package display provides output and logging functions for keysmith.
package display

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
	"github.com/unclesp1d3r/keysmith/lib/checkpoint"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/report"
	"github.com/unclesp1d3r/keysmith/lib/wordlist"
)

// Startup logs an informational message indicating keysmith is starting.
func Startup() {
	appstate.Logger.Info("Starting keysmith")
}

// ShuttingDown logs an informational message indicating keysmith is shutting down.
func ShuttingDown() {
	appstate.Logger.Info("Shutting down keysmith")
}

// SessionStarted logs the start of a fresh attack session.
func SessionStarted(target string, cfg candidate.Config, total *big.Int) {
	appstate.Logger.Debug("Attack configuration", "config", cfg)
	appstate.Logger.Info("New attack started", "target", target, "strategy", cfg.Strategy,
		"candidates", CandidateCount(total))
}

// SessionResumed logs the resumption of a checkpointed session.
func SessionResumed(sess *checkpoint.Session) {
	appstate.Logger.Info("Resuming attack", "target", sess.Target, "strategy", sess.Config.Strategy,
		"from", humanize.Comma(sess.CurrentIndex), "started", humanize.Time(sess.StartTime))
}

// CandidateCount renders a possibly huge candidate total with thousands separators.
func CandidateCount(total *big.Int) string {
	if total == nil {
		return "unknown"
	}

	return humanize.BigComma(total)
}

// JobProgress logs a progress sample.
func JobProgress(p engine.Progress) {
	if appstate.State.ExtraDebugging {
		appstate.Logger.Debug("Tried candidate", "index", p.Index, "candidate", p.Candidate)
	}

	total := "unknown"
	if p.Total > 0 {
		total = humanize.Comma(p.Total)
	}

	percent := "unknown"
	if p.PercentKnown {
		percent = fmt.Sprintf("%d%%", p.Percent)
	}

	eta := "unknown"
	if p.ETAKnown {
		eta = p.ETA.Round(time.Second).String()
	}

	appstate.Logger.Info("Progress update",
		"tried", humanize.Comma(p.Index),
		"total", total,
		"progress", percent,
		"eta", eta)
}

// TrialError logs a single failed trial.
func TrialError(ev engine.Event) {
	appstate.Logger.Warn("Credential trial failed", "index", ev.Index, "error", printable(ev.Message))
}

// Warning logs a non-fatal engine warning.
func Warning(ev engine.Event) {
	appstate.Logger.Warn("Attack warning", "target", ev.Target, "warning", printable(ev.Message))
}

// Rejected logs a refused start or resume.
func Rejected(ev engine.Event) {
	appstate.Logger.Error("Attack rejected", "target", ev.Target, "error", ev.Message)
}

// Paused logs that the session has been checkpointed.
func Paused(sess *checkpoint.Session) {
	if sess == nil {
		appstate.Logger.Info("Attack paused")
		return
	}

	appstate.Logger.Info("Attack paused", "target", sess.Target, "tried", humanize.Comma(sess.CurrentIndex))
	appstate.Logger.Info("Resume with", "command", "keysmith resume "+quoteArg(sess.Target))
}

// Outcome logs the terminal result of a session.
func Outcome(out engine.Outcome) {
	for _, line := range strings.Split(report.Format(out), "\n") {
		switch out.State {
		case engine.StateSucceeded:
			appstate.Logger.Info(line)
		case engine.StateFailed:
			appstate.Logger.Error(line)
		default:
			appstate.Logger.Warn(line)
		}
	}
}

// Event dispatches an engine event to the matching logger.
func Event(ev engine.Event) {
	switch ev.Kind {
	case engine.EventProgress:
		if ev.Progress != nil {
			JobProgress(*ev.Progress)
		}
	case engine.EventTrialError:
		TrialError(ev)
	case engine.EventWarning:
		Warning(ev)
	case engine.EventRejected:
		Rejected(ev)
	case engine.EventPaused:
		Paused(ev.Session)
	case engine.EventOutcome:
		if ev.Outcome != nil {
			Outcome(*ev.Outcome)
		}
	}
}

// Sessions writes a table of checkpointed sessions to w.
func Sessions(w io.Writer, sessions []*checkpoint.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No saved sessions.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tSTRATEGY\tTRIED\tTOTAL\tSTARTED\tUPDATED")
	for _, sess := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			sess.Target,
			sess.Config.Strategy,
			humanize.Comma(sess.CurrentIndex),
			sessionTotal(sess),
			humanize.Time(sess.StartTime),
			humanize.Time(sess.UpdatedAt))
	}

	return tw.Flush()
}

// Session writes the details of one checkpoint to w.
func Session(w io.Writer, sess *checkpoint.Session) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Target:\t%s\n", sess.Target)
	fmt.Fprintf(tw, "Session:\t%s\n", sess.ID)
	fmt.Fprintf(tw, "Strategy:\t%s\n", sess.Config.Strategy)
	if sess.Config.WordlistPath != "" {
		fmt.Fprintf(tw, "Wordlist:\t%s\n", sess.Config.WordlistPath)
	}
	if sess.Config.Strategy.UsesBruteForce() {
		fmt.Fprintf(tw, "Charset:\t%s\n", sess.Config.Charset)
		fmt.Fprintf(tw, "Lengths:\t%d-%d\n", sess.Config.MinLength, sess.Config.MaxLength)
	}
	fmt.Fprintf(tw, "Tried:\t%s of %s\n", humanize.Comma(sess.CurrentIndex), sessionTotal(sess))
	fmt.Fprintf(tw, "Started:\t%s (%s)\n", sess.StartTime.Format(time.RFC3339), humanize.Time(sess.StartTime))
	fmt.Fprintf(tw, "Updated:\t%s (%s)\n", sess.UpdatedAt.Format(time.RFC3339), humanize.Time(sess.UpdatedAt))

	return tw.Flush()
}

// Lists writes a table of password lists to w.
func Lists(w io.Writer, lists []wordlist.Info) error {
	if len(lists) == 0 {
		_, err := fmt.Fprintln(w, "No password lists found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, l := range lists {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, humanize.Bytes(uint64(max(l.Size, 0))), humanize.Time(l.ModTime))
	}

	return tw.Flush()
}

// sessionTotal is only known for brute force, since dictionary words are not persisted.
func sessionTotal(sess *checkpoint.Session) string {
	if sess.Config.Strategy != candidate.StrategyBruteForce {
		return "?"
	}

	return CandidateCount(candidate.EstimateTotal(sess.Config))
}

func quoteArg(s string) string {
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return fmt.Sprintf("%q", s)
	}

	return s
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}

		return -1
	}, s)
}
