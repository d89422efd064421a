package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/lib/testhelpers"
)

func TestFetch(t *testing.T) {
	cleanup := testhelpers.SetupTestState()
	defer cleanup()

	content := []byte("letmein\nhunter2\n")
	srcDir := t.TempDir()
	testhelpers.CreateTestFile(t, srcDir, "common.txt", content)
	server := testhelpers.MockDownloadServer(t, srcDir)
	dstDir := filepath.Join(t.TempDir(), "lists")

	path, err := Fetch(context.Background(), server.URL+"/common.txt", dstDir, testhelpers.CalculateTestChecksum(content))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dstDir, "common.txt"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// A valid local copy is reused.
	server.Close()
	again, err := Fetch(context.Background(), server.URL+"/common.txt", dstDir, testhelpers.CalculateTestChecksum(content))
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestFetch_ChecksumMismatch(t *testing.T) {
	cleanup := testhelpers.SetupTestState()
	defer cleanup()

	srcDir := t.TempDir()
	testhelpers.CreateTestFile(t, srcDir, "common.txt", []byte("letmein\n"))
	server := testhelpers.MockDownloadServer(t, srcDir)

	_, err := Fetch(context.Background(), server.URL+"/common.txt", t.TempDir(), "00000000000000000000000000000000")
	require.Error(t, err)
}

func TestFetch_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/local/path.txt", "https://example.com/"} {
		_, err := Fetch(context.Background(), raw, t.TempDir(), "")
		require.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestFileExistsAndValid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name           string
		setupFile      func() string
		checksum       string
		expectedResult bool
	}{
		{
			name: "file exists with matching checksum",
			setupFile: func() string {
				return testhelpers.CreateTestFile(t, dir, "test1.txt", []byte("test content"))
			},
			checksum:       "9473fdd0d880a43c21b7778d34872157",
			expectedResult: true,
		},
		{
			name: "file exists with no checksum provided",
			setupFile: func() string {
				return testhelpers.CreateTestFile(t, dir, "test2.txt", []byte("test content"))
			},
			expectedResult: true,
		},
		{
			name: "file exists with mismatched checksum",
			setupFile: func() string {
				return testhelpers.CreateTestFile(t, dir, "test3.txt", []byte("test content"))
			},
			checksum:       "wrongchecksum123456789012345678901",
			expectedResult: false,
		},
		{
			name: "file does not exist",
			setupFile: func() string {
				return filepath.Join(dir, "nonexistent.txt")
			},
			checksum:       "somechecksum",
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := tt.setupFile()
			assert.Equal(t, tt.expectedResult, FileExistsAndValid(filePath, tt.checksum))
		})
	}

	assert.NoFileExists(t, filepath.Join(dir, "test3.txt"), "mismatched files are removed")
}

func TestAppendChecksumToURL(t *testing.T) {
	got, err := appendChecksumToURL("https://example.com/list.txt?token=abc", "d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/list.txt?checksum=md5%3Ad41d8cd98f00b204e9800998ecf8427e&token=abc", got)
}
