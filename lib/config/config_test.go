package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/keysmith/appstate"
)

func TestSetDefaultConfigValues(t *testing.T) {
	viper.Reset()
	SetDefaultConfigValues()

	cwd, err := os.Getwd()
	require.NoError(t, err, "failed to get current working directory")

	tests := []struct {
		name     string
		key      string
		expected any
		getter   func(string) any
	}{
		{
			name:     "trial_timeout defaults to 10 seconds",
			key:      "trial_timeout",
			expected: 10 * time.Second,
			getter:   func(k string) any { return viper.GetDuration(k) },
		},
		{
			name:     "trial_rate defaults to unthrottled",
			key:      "trial_rate",
			expected: 0.0,
			getter:   func(k string) any { return viper.GetFloat64(k) },
		},
		{
			name:     "charset defaults to lowercase letters",
			key:      "charset",
			expected: "abcdefghijklmnopqrstuvwxyz",
			getter:   func(k string) any { return viper.GetString(k) },
		},
		{
			name:     "min_length defaults to 8",
			key:      "min_length",
			expected: 8,
			getter:   func(k string) any { return viper.GetInt(k) },
		},
		{
			name:     "max_length defaults to 8",
			key:      "max_length",
			expected: 8,
			getter:   func(k string) any { return viper.GetInt(k) },
		},
		{
			name:     "record_events defaults to true",
			key:      "record_events",
			expected: true,
			getter:   func(k string) any { return viper.GetBool(k) },
		},
		{
			name:     "extra_debugging defaults to false",
			key:      "extra_debugging",
			expected: false,
			getter:   func(k string) any { return viper.GetBool(k) },
		},
		{
			name:     "download_retries defaults to 3",
			key:      "download_retries",
			expected: 3,
			getter:   func(k string) any { return viper.GetInt(k) },
		},
		{
			name:     "data_path defaults to cwd/data",
			key:      "data_path",
			expected: filepath.Join(cwd, "data"),
			getter:   func(k string) any { return viper.GetString(k) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.getter(tt.key), "config key %q mismatch", tt.key)
		})
	}
}

func TestSetupSharedState_ValidationClampsInvalidValues(t *testing.T) {
	viper.Reset()
	SetDefaultConfigValues()

	viper.Set("download_retries", 0)
	viper.Set("trial_timeout", 0)
	viper.Set("trial_rate", -4)
	viper.Set("charset", "   ")
	viper.Set("min_length", 0)
	viper.Set("max_length", 2)
	viper.Set("status_interval", -time.Second)

	SetupSharedState()

	assert.Equal(t, DefaultDownloadRetries, appstate.State.DownloadRetries)
	assert.Equal(t, DefaultTrialTimeout, appstate.State.TrialTimeout)
	assert.Zero(t, appstate.State.TrialRate)
	assert.Equal(t, DefaultCharset, appstate.State.DefaultCharset)
	assert.Equal(t, DefaultLength, appstate.State.DefaultMinLen)
	assert.Equal(t, DefaultLength, appstate.State.DefaultMaxLen, "max below min is raised to min")
	assert.Equal(t, DefaultStatusInterval, appstate.State.StatusInterval)
}

func TestSetupSharedState_ValidationAcceptsValidValues(t *testing.T) {
	viper.Reset()
	SetDefaultConfigValues()

	viper.Set("download_retries", 5)
	viper.Set("trial_timeout", 30*time.Second)
	viper.Set("trial_rate", 2.5)
	viper.Set("charset", "0123456789")
	viper.Set("min_length", 4)
	viper.Set("max_length", 6)
	viper.Set("scan_file", "/tmp/scan.txt")

	SetupSharedState()

	assert.Equal(t, 5, appstate.State.DownloadRetries)
	assert.Equal(t, 30*time.Second, appstate.State.TrialTimeout)
	assert.InDelta(t, 2.5, appstate.State.TrialRate, 0.001)
	assert.Equal(t, "0123456789", appstate.State.DefaultCharset)
	assert.Equal(t, 4, appstate.State.DefaultMinLen)
	assert.Equal(t, 6, appstate.State.DefaultMaxLen)
	assert.Equal(t, "/tmp/scan.txt", appstate.State.ScanFile)
}

func TestSetupSharedState_DerivedPathsFromDataRoot(t *testing.T) {
	t.Run("custom data_path is honoured for derived paths", func(t *testing.T) {
		viper.Reset()
		SetDefaultConfigValues()
		customDataPath := filepath.Join("custom", "data")
		viper.Set("data_path", customDataPath)
		SetupSharedState()

		assert.Equal(t, customDataPath, appstate.State.DataPath)
		assert.Equal(t, filepath.Join(customDataPath, "sessions"), appstate.State.SessionsPath)
		assert.Equal(t, filepath.Join(customDataPath, "lists"), appstate.State.ListsPath)
		assert.Equal(t, filepath.Join(customDataPath, "results"), appstate.State.ExportPath)
		assert.Equal(t, filepath.Join(customDataPath, "events"), appstate.State.EventsPath)
		assert.Equal(t, filepath.Join(customDataPath, "locks"), appstate.State.LocksPath)
	})

	t.Run("explicit lists_path overrides derivation", func(t *testing.T) {
		viper.Reset()
		SetDefaultConfigValues()
		customDataPath := filepath.Join("custom", "data")
		explicitLists := filepath.Join("explicit", "lists")
		viper.Set("data_path", customDataPath)
		viper.Set("lists_path", explicitLists)
		SetupSharedState()

		assert.Equal(t, explicitLists, appstate.State.ListsPath)
		assert.Equal(t, filepath.Join(customDataPath, "sessions"), appstate.State.SessionsPath)
	})
}

func TestCreateDataDirs(t *testing.T) {
	root := t.TempDir()

	viper.Reset()
	SetDefaultConfigValues()
	viper.Set("data_path", root)
	SetupSharedState()

	require.NoError(t, CreateDataDirs())

	for _, dir := range []string{"sessions", "lists", "results", "events", "locks"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}

	require.NoError(t, CreateDataDirs(), "existing directories are left alone")
}

func TestInitLogger(t *testing.T) {
	defer func() {
		appstate.State.Debug = false
		InitLogger()
		appstate.Logger.SetReportCaller(false)
	}()

	appstate.State.Debug = true
	InitLogger()
	assert.Equal(t, log.DebugLevel, appstate.Logger.GetLevel())

	appstate.State.Debug = false
	InitLogger()
	assert.Equal(t, log.InfoLevel, appstate.Logger.GetLevel())
}

func TestInitConfig_ReadsExplicitFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg := filepath.Join(t.TempDir(), "keysmith.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("charset: xyz\nmin_length: 3\n"), 0o600))

	InitConfig(cfg)

	assert.Equal(t, cfg, viper.ConfigFileUsed())
	assert.Equal(t, "xyz", viper.GetString("charset"))
	assert.Equal(t, 3, viper.GetInt("min_length"))
}
