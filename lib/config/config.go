// Package config provides configuration management for keysmith.
package config

import (
	"errors"
	"os"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/keysmith/appstate"
)

const (
	// DefaultCharset is the brute-force charset used when none is configured.
	DefaultCharset = "abcdefghijklmnopqrstuvwxyz"
	// DefaultLength is the brute-force minimum and maximum length used when none is configured.
	DefaultLength = 8
	// DefaultTrialTimeout bounds a single credential trial.
	DefaultTrialTimeout = 10 * time.Second
	// DefaultDownloadRetries is the number of wordlist download attempts.
	DefaultDownloadRetries = 3
	// DefaultStatusInterval spaces progress log lines.
	DefaultStatusInterval = 10 * time.Second

	envPrefix  = "KEYSMITH"
	configName = "keysmith"
)

var (
	scope = gap.NewScope(gap.User, "keysmith") //nolint:gochecknoglobals // Configuration scope
)

// InitConfig initializes the configuration from various sources.
func InitConfig(cfgFile string) {
	appstate.ErrorLogger.SetReportCaller(true)

	home, err := os.UserConfigDir()
	cobra.CheckErr(err)

	cwd, err := os.Getwd()
	cobra.CheckErr(err)
	viper.AddConfigPath(cwd)

	configDirs, err := scope.ConfigDirs()
	cobra.CheckErr(err)

	for _, dir := range configDirs {
		viper.AddConfigPath(dir)
	}

	viper.AddConfigPath(home)
	viper.SetConfigType("yaml")
	viper.SetConfigName(configName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		appstate.Logger.Debug("Using config file", "config_file", viper.ConfigFileUsed())
	} else {
		appstate.Logger.Debug("No config file found, attempting to write a new one")

		var exists viper.ConfigFileAlreadyExistsError
		if err := viper.SafeWriteConfig(); err != nil && !errors.As(err, &exists) {
			appstate.Logger.Warn("Error writing config file", "error", err)
		}
	}
}

// SetupSharedState configures the shared state from configuration values.
// Out-of-range values fall back to their defaults.
func SetupSharedState() {
	dataRoot := viper.GetString("data_path")
	appstate.State.DataPath = dataRoot
	appstate.State.SessionsPath = pathOrDerived("sessions_path", dataRoot, "sessions")
	appstate.State.ListsPath = pathOrDerived("lists_path", dataRoot, "lists")
	appstate.State.ExportPath = pathOrDerived("export_path", dataRoot, "results")
	appstate.State.EventsPath = path.Join(dataRoot, "events")
	appstate.State.LocksPath = path.Join(dataRoot, "locks")
	appstate.State.ScanFile = viper.GetString("scan_file")
	appstate.State.Debug = viper.GetBool("debug")
	appstate.State.ExtraDebugging = viper.GetBool("extra_debugging")
	appstate.State.RecordEvents = viper.GetBool("record_events")

	appstate.State.TrialTimeout = viper.GetDuration("trial_timeout")
	if appstate.State.TrialTimeout <= 0 {
		appstate.State.TrialTimeout = DefaultTrialTimeout
	}

	appstate.State.TrialRate = max(viper.GetFloat64("trial_rate"), 0)

	appstate.State.DefaultCharset = viper.GetString("charset")
	if strutil.IsBlank(appstate.State.DefaultCharset) {
		appstate.State.DefaultCharset = DefaultCharset
	}

	appstate.State.DefaultMinLen = viper.GetInt("min_length")
	if appstate.State.DefaultMinLen < 1 {
		appstate.State.DefaultMinLen = DefaultLength
	}

	appstate.State.DefaultMaxLen = viper.GetInt("max_length")
	if appstate.State.DefaultMaxLen < appstate.State.DefaultMinLen {
		appstate.State.DefaultMaxLen = appstate.State.DefaultMinLen
	}

	appstate.State.DownloadRetries = viper.GetInt("download_retries")
	if appstate.State.DownloadRetries < 1 {
		appstate.State.DownloadRetries = DefaultDownloadRetries
	}

	appstate.State.StatusInterval = viper.GetDuration("status_interval")
	if appstate.State.StatusInterval <= 0 {
		appstate.State.StatusInterval = DefaultStatusInterval
	}
}

// SetDefaultConfigValues sets default configuration values.
func SetDefaultConfigValues() {
	cwd, err := os.Getwd()
	cobra.CheckErr(err)

	viper.SetDefault("data_path", path.Join(cwd, "data"))
	viper.SetDefault("scan_file", "")
	viper.SetDefault("extra_debugging", false)
	viper.SetDefault("record_events", true)
	viper.SetDefault("trial_timeout", DefaultTrialTimeout)
	viper.SetDefault("trial_rate", 0)
	viper.SetDefault("charset", DefaultCharset)
	viper.SetDefault("min_length", DefaultLength)
	viper.SetDefault("max_length", DefaultLength)
	viper.SetDefault("download_retries", DefaultDownloadRetries)
	viper.SetDefault("status_interval", DefaultStatusInterval)
}

// InitLogger sets the logger level from the debug flag. Debug mode also reports callers.
func InitLogger() {
	if appstate.State.Debug {
		appstate.Logger.SetLevel(log.DebugLevel)
		appstate.Logger.SetReportCaller(true)
	} else {
		appstate.Logger.SetLevel(log.InfoLevel)
	}
}

// CreateDataDirs creates the keysmith data directories if they do not exist.
func CreateDataDirs() error {
	dataDirs := []string{
		appstate.State.SessionsPath,
		appstate.State.ListsPath,
		appstate.State.ExportPath,
		appstate.State.EventsPath,
		appstate.State.LocksPath,
	}

	for _, dir := range dataDirs {
		if strutil.IsBlank(dir) {
			appstate.Logger.Error("Data directory not set")

			continue
		}

		if !fileutil.IsDir(dir) {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				appstate.Logger.Error("Error creating directory", "path", dir, "error", err)

				return err
			}
			appstate.Logger.Debug("Created directory", "path", dir)
		}
	}

	return nil
}

// pathOrDerived returns the explicitly configured path for key, or a directory under the data root.
func pathOrDerived(key, dataRoot, name string) string {
	if p := viper.GetString(key); strutil.IsNotBlank(p) {
		return p
	}

	return path.Join(dataRoot, name)
}
