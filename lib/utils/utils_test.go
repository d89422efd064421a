package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetFileName(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantPrefix string
	}{
		{name: "plain", target: "HomeNetwork", wantPrefix: "HomeNetwork-"},
		{name: "spaces and symbols", target: "Cafe Wi-Fi / 5G", wantPrefix: "Cafe_Wi-Fi_5G-"},
		{name: "path traversal", target: "../../etc/passwd", wantPrefix: "etc_passwd-"},
		{name: "unicode only", target: "网络", wantPrefix: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetFileName(tt.target, ".json")
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			assert.True(t, strings.HasSuffix(got, ".json"), got)
			assert.NotContains(t, got, "/")
		})
	}

	assert.NotEqual(t, TargetFileName("a b", ".x"), TargetFileName("a_b", ".x"), "hash keeps similar names apart")
	assert.LessOrEqual(t, len(TargetFileName(strings.Repeat("x", 200), "")), maxNameLength+1+nameHashLength)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.NoFileExists(t, path+".tmp")

	err = WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "out.json"), []byte("x"), 0o600)
	require.Error(t, err)
}
