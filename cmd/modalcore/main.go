// Package main is the entry point of the modalcore command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/logger"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// options are the global flags and what was loaded from them.
type options struct {
	configPath string
	logLevel   string
	logFile    string

	settings *config.Settings
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "modalcore",
		Short: "Vim-style modal editing core",
		Long: `modalcore drives a Vim-style modal key-event state machine.

  modalcore run [file]                       Edit a file in the terminal
  modalcore replay --keys "<keys>" [file|-]  Replay keys headlessly and print the result
  modalcore keys "<keys>"                    Print the keys a key string is read as`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the settings file")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file; overrides the settings file")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newReplayCmd(opts),
		newKeysCmd(),
	)
	return rootCmd
}

// load reads the settings and configures logging. Flags win over the
// settings file.
func (o *options) load() error {
	settings, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		settings.LogLevel = o.logLevel
	}
	if o.logFile != "" {
		settings.LogFile = o.logFile
	}
	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logger.Init(level, settings.LogFile)
	logger.Debug("settings loaded", "config", o.configPath, "level", settings.LogLevel)

	o.settings = settings
	return nil
}
