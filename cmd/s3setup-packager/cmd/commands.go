package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seagate/s3setup/internal/config"
	"github.com/seagate/s3setup/internal/domain/release"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/service/builder"
	"github.com/seagate/s3setup/internal/service/checker"
	"github.com/seagate/s3setup/internal/service/installer"
	"github.com/seagate/s3setup/internal/service/publisher"
	"github.com/seagate/s3setup/internal/service/sdist"
)

const manifestFlagUsage = "release manifest (default: derived from VERSION and the output directory)"

var (
	// format overrides the describe output format.
	format string
	// strict turns check warnings into failures.
	strict bool
	// outputDir overrides where sdist writes and where manifests are looked up.
	outputDir string
	// manifestPath points install and publish at a release manifest.
	manifestPath string
	// prefix is the installation root.
	prefix string
	// force allows publish to overwrite an existing release.
	force bool
	// bucket and keyPrefix override the publication target.
	bucket    string
	keyPrefix string
	// overwrite lets init replace an existing settings file.
	overwrite bool

	errSettingsExist = errors.New("settings file already exists, use --overwrite to replace it")

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to a configuration file",
		Long: `Writes the settings in effect (defaults, the loaded file and flag
overrides) to --config, or to ` + config.DefaultConfigFilename + ` when no path is given.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: loadSettingsIfPresent,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			path := configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("%s: %w", path, errSettingsExist)
			}

			if err := config.Save(path, settings); err != nil {
				return err
			}

			logger.InfoKV(ctx, "Settings written", "path", path)

			return nil
		},
	}

	describeCmd = &cobra.Command{
		Use:   "describe",
		Short: "Print the package descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			if cmd.Flags().Changed("format") {
				settings.Format = format
			}

			if err := config.Validate(settings); err != nil {
				return err
			}

			return builder.Run(ctx, &builder.Options{
				BaseDir: settings.BaseDir,
				Format:  settings.Format,
				Output:  cmd.OutOrStdout(),
			})
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report problems in the package descriptor",
		Long: `Builds the descriptor and reports an empty or non-semantic version and
declared package directories or scripts missing on disk. Findings are
warnings unless --strict is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return checker.Run(ctx, &checker.Options{
				BaseDir: settings.BaseDir,
				Strict:  strict,
				Output:  cmd.OutOrStdout(),
			})
		},
	}

	sdistCmd = &cobra.Command{
		Use:   "sdist",
		Short: "Create a source distribution and its release manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			applyOutputDir(cmd)

			return sdist.Run(ctx, &sdist.Options{
				BaseDir:   settings.BaseDir,
				OutputDir: settings.OutputDir,
			})
		},
	}

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Install a source distribution into a prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			applyOutputDir(cmd)

			path, err := resolveManifest(ctx)
			if err != nil {
				return err
			}

			return installer.Run(ctx, &installer.Options{
				ManifestPath: path,
				Prefix:       prefix,
			})
		},
	}

	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Upload a source distribution to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			applyOutputDir(cmd)

			if cmd.Flags().Changed("bucket") {
				settings.S3.Bucket = bucket
			}

			if cmd.Flags().Changed("key-prefix") {
				settings.S3.Prefix = keyPrefix
			}

			path, err := resolveManifest(ctx)
			if err != nil {
				return err
			}

			return publisher.Run(ctx, &publisher.Options{
				ManifestPath: path,
				Config:       settings,
				Force:        force,
			})
		},
	}
)

// applyOutputDir lets --output-dir override the configured output directory.
func applyOutputDir(cmd *cobra.Command) {
	if cmd.Flags().Changed("output-dir") {
		settings.OutputDir = outputDir
	}
}

// resolveManifest returns --manifest, or the manifest sdist writes for the current VERSION.
func resolveManifest(ctx context.Context) (string, error) {
	if manifestPath != "" {
		return manifestPath, nil
	}

	result, err := builder.Build(ctx, settings.BaseDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(settings.OutputDir, release.ManifestName(result.Descriptor)), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	describeCmd.Flags().StringVarP(&format, "format", "f", config.FormatYAML, "output format: yaml, json or table")

	checkCmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings")

	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing settings file")

	for _, c := range []*cobra.Command{sdistCmd, installCmd, publishCmd} {
		c.Flags().StringVarP(&outputDir, "output-dir", "o", config.DefaultOutputDir,
			"directory holding archives and manifests")
	}

	for _, c := range []*cobra.Command{installCmd, publishCmd} {
		c.Flags().StringVarP(&manifestPath, "manifest", "m", "", manifestFlagUsage)
	}

	installCmd.Flags().StringVarP(&prefix, "prefix", "p", "", "installation root")
	_ = installCmd.MarkFlagRequired("prefix")

	publishCmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket (overrides s3.bucket)")
	publishCmd.Flags().StringVar(&keyPrefix, "key-prefix", "", "object key prefix (overrides s3.prefix)")
	publishCmd.Flags().BoolVar(&force, "force", false, "overwrite a release that is already published")
}
