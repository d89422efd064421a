package testhelpers

import (
	"crypto/md5" //nolint:gosec // matches the wordlist checksum format
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with the specified content in the given directory.
// Returns the full file path.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, 0o600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return filePath
}

// CreateWordlistFile writes words, one per line, to a wordlist file in dir.
func CreateWordlistFile(t *testing.T, dir, filename string, words []string) string {
	t.Helper()
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(w + "\n")
	}
	return CreateTestFile(t, dir, filename, []byte(sb.String()))
}

// MockDownloadServer creates a test HTTP server that serves files from baseDir.
// The server is closed via t.Cleanup().
func MockDownloadServer(t *testing.T, baseDir string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := filepath.Base(r.URL.Path)
		filePath := filepath.Join(baseDir, filename)

		file, err := os.Open(filePath)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, file)
	}))

	t.Cleanup(func() {
		server.Close()
	})

	return server
}

// CalculateTestChecksum returns the hex MD5 of content, the format used for wordlist checksums.
func CalculateTestChecksum(content []byte) string {
	sum := md5.Sum(content) //nolint:gosec // checksum, not a security boundary
	return hex.EncodeToString(sum[:])
}
