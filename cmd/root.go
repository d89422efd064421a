// Package cmd implements the keysmith command line.
package cmd

import (
	"context"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/keysmith/lib/config"
)

// Version is the keysmith release, overridden at build time with -ldflags.
var Version = "dev" //nolint:gochecknoglobals // set by the linker

var (
	cfgFile     string //nolint:gochecknoglobals // bound to the --config flag
	enableDebug bool   //nolint:gochecknoglobals // bound to the --debug flag
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra root command
	Use:   "keysmith",
	Short: "Resumable password attack sessions",
	Long: "keysmith enumerates candidate passphrases for a target from a dictionary, a brute-force\n" +
		"generator or both, tries each one through a pluggable credential trial, and checkpoints\n" +
		"the session so it can be paused, resumed or cancelled.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command through fang.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd, fang.WithVersion(Version))
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is keysmith.yaml in the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&enableDebug, "debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	cobra.CheckErr(err)

	config.SetDefaultConfigValues()

	rootCmd.AddCommand(attackCmd, resumeCmd, sessionsCmd, exportCmd, listsCmd, watchCmd)
}

func initConfig() {
	config.InitConfig(cfgFile)
}

// setup loads the shared state and data directories before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	config.SetupSharedState()
	config.InitLogger()

	return config.CreateDataDirs()
}
