package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seagate/s3setup/internal/config"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/version"
)

var (
	// configPath to the configuration YAML file; empty means the optional default file.
	configPath string
	// baseDir overrides the directory holding VERSION.
	baseDir string
	// logLevel is the minimum level of emitted log entries.
	logLevel string

	// settings are loaded before any subcommand runs.
	settings *config.Config

	// rootCmd represents the base command; subcommands do the work.
	rootCmd = &cobra.Command{
		Use:   "s3setup-packager",
		Short: "Build, install and publish the s3setup distribution",
		Long: `Builds the s3setup package descriptor from the VERSION file in the base
directory and uses it to produce a source distribution, install it into a
prefix, or publish it to S3-compatible object storage.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}
)

// Execute runs the s3setup-packager CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadSettings reads the settings file, applies flag overrides and the log level.
func loadSettings(cmd *cobra.Command, _ []string) error {
	return applySettings(cmd, config.Load)
}

// loadSettingsIfPresent is loadSettings for commands that may create the settings file.
func loadSettingsIfPresent(cmd *cobra.Command, _ []string) error {
	return applySettings(cmd, func(path string) (*config.Config, error) {
		if path != "" {
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return config.Default(), nil
			}
		}

		return config.Load(path)
	})
}

func applySettings(cmd *cobra.Command, load func(path string) (*config.Config, error)) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	logger.SetLevel(level)

	cfg, err := load(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDir = baseDir
	}

	settings = cfg

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.PersistentFlags().StringVarP(&baseDir, "base-dir", "b", ".",
		"directory holding the VERSION file and package sources")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(initCmd, describeCmd, checkCmd, sdistCmd, installCmd, publishCmd)
	version.AttachCobraVersionCommand(rootCmd)
}
