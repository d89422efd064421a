package wordlist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/strutil"
	getter "github.com/hashicorp/go-getter"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/progress"
)

const (
	defaultUmask = 0o022 // Default umask for file permissions
	dirPerm      = 0o755
)

var (
	// ErrInvalidURL is returned for list URLs without a scheme, host or file name.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrChecksumMismatch is returned when a downloaded list does not match the expected checksum.
	ErrChecksumMismatch = errors.New("downloaded file checksum does not match")
)

// Fetch downloads the list at rawURL into dir and returns its local path.
// An existing file whose MD5 matches checksum is reused without downloading.
func Fetch(ctx context.Context, rawURL, dir, checksum string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appstate.Logger.Error("Invalid URL", "url", rawURL)
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: no file name in %q", ErrInvalidURL, rawURL)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("creating lists directory: %w", err)
	}

	dst := filepath.Join(dir, name)
	if strutil.IsNotBlank(checksum) && FileExistsAndValid(dst, checksum) {
		appstate.Logger.Info("Download already exists", "path", dst)
		return dst, nil
	}

	attempts := max(appstate.State.DownloadRetries, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		err = downloadAndVerifyFile(ctx, rawURL, dst, checksum)
		if err == nil {
			return dst, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		appstate.Logger.Warn("Wordlist download failed", "url", rawURL, "attempt", attempt, "error", err)
	}

	return "", err
}

// FileExistsAndValid reports whether filePath exists and, when checksum is set, matches it.
// A file with a mismatched checksum is removed.
func FileExistsAndValid(filePath, checksum string) bool {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false
	}

	if strutil.IsBlank(checksum) {
		return true
	}

	fileChecksum, err := cryptor.Md5File(filePath)
	if err != nil {
		appstate.Logger.Error("Error calculating file checksum", "path", filePath, "error", err)
		return false
	}

	if fileChecksum == checksum {
		return true
	}

	appstate.Logger.Warn("Checksums do not match",
		"path", filePath, "url_checksum", checksum, "file_checksum", fileChecksum)

	if err := os.Remove(filePath); err != nil {
		appstate.Logger.Error("Error removing file with mismatched checksum", "path", filePath, "error", err)
	}

	return false
}

func downloadAndVerifyFile(ctx context.Context, fileURL, filePath, checksum string) error {
	if strutil.IsNotBlank(checksum) {
		var err error

		fileURL, err = appendChecksumToURL(fileURL, checksum)
		if err != nil {
			return err
		}
	}

	appstate.State.SetCurrentActivity(appstate.CurrentActivityDownloading)

	client := &getter.Client{
		Ctx:  ctx,
		Dst:  filePath,
		Src:  fileURL,
		Pwd:  filepath.Dir(filePath),
		Mode: getter.ClientModeFile,
	}

	_ = client.Configure( //nolint:errcheck // Client configuration errors are not critical
		getter.WithProgress(progress.DefaultProgressBar),
		getter.WithUmask(os.FileMode(defaultUmask)),
	)

	if err := client.Get(); err != nil {
		appstate.Logger.Debug("Error downloading file", "error", err)
		return fmt.Errorf("downloading %s: %w", fileURL, err)
	}

	if strutil.IsNotBlank(checksum) && !FileExistsAndValid(filePath, checksum) {
		return ErrChecksumMismatch
	}

	return nil
}

// appendChecksumToURL asks go-getter to verify the download against an MD5 checksum.
func appendChecksumToURL(rawURL, checksum string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("checksum", "md5:"+checksum)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
