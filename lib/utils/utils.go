// Package utils holds small file helpers shared by the stores and exporters.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/unclesp1d3r/keysmith/appstate"
)

const (
	maxNameLength  = 48
	nameHashLength = 8
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`) //nolint:gochecknoglobals // Compiled once

// TargetFileName derives a file name for target with the given extension.
// Target names are arbitrary, so the result is a sanitized prefix plus a short hash of the full name.
func TargetFileName(target, ext string) string {
	name := strings.Trim(unsafeNameChars.ReplaceAllString(target, "_"), "_.")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	sum := sha256.Sum256([]byte(target))

	return name + "-" + hex.EncodeToString(sum[:])[:nameHashLength] + ext
}

// WriteFileAtomic writes data to a temporary file next to path and renames it into place,
// so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			appstate.Logger.Warn("Failed to clean up temp file", "error", removeErr, "path", tmpPath)
		}

		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}

	return nil
}
