// Package report turns attack outcomes into human-readable summaries and export files.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/engine"
	"github.com/unclesp1d3r/keysmith/lib/utils"
)

const (
	exportFilePermissions = 0o600 // Exports contain a recovered credential
	exportDirPermissions  = 0o700
	exportSuffix          = "_result.txt"
)

// ErrNothingToExport is returned when an outcome carries no credential.
var ErrNothingToExport = errors.New("outcome has no credential to export")

// Record is the JSON export layout.
type Record struct {
	SSID           string    `json:"ssid"`
	Password       string    `json:"password"`
	Attempts       int64     `json:"attempts"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	ExportedAt     time.Time `json:"exported_at"`
}

// Format returns a short human-readable summary of out.
func Format(out engine.Outcome) string {
	tried := fmt.Sprintf("Tried %s passwords in %.1f seconds.", humanize.Comma(out.AttemptsTried), out.ElapsedSeconds())

	switch out.State {
	case engine.StateSucceeded:
		return fmt.Sprintf("Success! Password for '%s' is: %s\n%s", out.Target, out.Candidate, tried)
	case engine.StateExhausted:
		return fmt.Sprintf("Failed. No valid password found for '%s'.\n%s", out.Target, tried)
	case engine.StateCancelled:
		return fmt.Sprintf("Cancelled. Attack on '%s' was stopped.\n%s", out.Target, tried)
	case engine.StateFailed:
		return fmt.Sprintf("Error. Attack on '%s' failed; its last checkpoint was kept.\n%s", out.Target, tried)
	default:
		return fmt.Sprintf("Attack on '%s' is %s.\n%s", out.Target, out.State, tried)
	}
}

// Text renders the plain-text export layout.
func Text(out engine.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SSID: %s\n", out.Target)
	fmt.Fprintf(&sb, "Password: %s\n", out.Candidate)
	fmt.Fprintf(&sb, "Attempts: %d\n", out.AttemptsTried)
	fmt.Fprintf(&sb, "Time: %.1f seconds\n", out.ElapsedSeconds())

	return sb.String()
}

// DefaultPath returns the export file used for target when the operator names none.
func DefaultPath(dir, target string) string {
	return filepath.Join(dir, utils.TargetFileName(target, exportSuffix))
}

// Export writes the credential in out to dest. Destinations ending in .json get a JSON record;
// anything else gets the plain-text layout. Only succeeded outcomes can be exported.
func Export(out engine.Outcome, dest string) error {
	if out.State != engine.StateSucceeded || !out.Found {
		return fmt.Errorf("%w: session ended %s", ErrNothingToExport, out.State)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(dest), ".json") {
		record := Record{
			SSID:           out.Target,
			Password:       out.Candidate,
			Attempts:       out.AttemptsTried,
			ElapsedSeconds: out.ElapsedSeconds(),
			ExportedAt:     time.Now().UTC(),
		}

		var err error
		data, err = json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = []byte(Text(out))
	}

	if err := os.MkdirAll(filepath.Dir(dest), exportDirPermissions); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := utils.WriteFileAtomic(dest, data, exportFilePermissions); err != nil {
		return err
	}

	appstate.Logger.Info("Result exported", "target", out.Target, "path", dest)

	return nil
}
