package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the packager settings shared by every subcommand.
type Config struct {
	// BaseDir is the directory holding the VERSION file and the package sources.
	BaseDir string `yaml:"base_dir"`
	// OutputDir is where sdist writes archives and manifests.
	OutputDir string `yaml:"output_dir"`
	// Format selects how the describe command renders the descriptor.
	Format string `yaml:"format"`
	// Timeout bounds each remote call made by the publisher.
	Timeout time.Duration `yaml:"timeout"`
	// S3 holds the publication target.
	S3 S3 `yaml:"s3"`
}

// S3 describes the object storage that receives published distributions.
type S3 struct {
	// Bucket is the destination bucket name.
	Bucket string `yaml:"bucket"`
	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix"`
	// Region is the AWS region; empty means the SDK default chain.
	Region string `yaml:"region"`
	// Endpoint overrides the service endpoint for S3-compatible stores.
	Endpoint string `yaml:"endpoint"`
	// PathStyle forces path-style addressing, needed by most S3-compatible stores.
	PathStyle bool `yaml:"path_style"`
	// AccessKeyID and SecretAccessKey select static credentials when both are set.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "s3setup-packager.yaml"

	// DefaultOutputDir mirrors the setuptools dist folder.
	DefaultOutputDir = "dist"

	// DefaultTimeout is the default duration for remote calls.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the permission used for settings files.
	DefaultFilePermissions = 0o600

	// FormatYAML, FormatJSON and FormatTable are the supported render formats.
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownFormat is returned for a render format the packager does not support.
	errUnknownFormat = errors.New("unknown output format")
	// errSecretWithoutKey is returned when only half of a static credential pair is set.
	errSecretWithoutKey = errors.New("access_key_id and secret_access_key must be set together")
)

// Formats lists the supported render formats.
func Formats() []string {
	return []string{FormatYAML, FormatJSON, FormatTable}
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// With an empty path the default file is tried and its absence is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Settings may carry credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks formatting of the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.BaseDir == "" {
		settings.BaseDir = "."
	}

	if settings.OutputDir == "" {
		settings.OutputDir = DefaultOutputDir
	}

	if settings.Format == "" {
		settings.Format = FormatYAML
	}

	if !slices.Contains(Formats(), settings.Format) {
		return fmt.Errorf("%w: %q", errUnknownFormat, settings.Format)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if (settings.S3.AccessKeyID == "") != (settings.S3.SecretAccessKey == "") {
		return errSecretWithoutKey
	}

	if settings.S3.Endpoint == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(settings.S3.Endpoint); err != nil {
		return fmt.Errorf("invalid s3 endpoint: %w", err)
	}

	return nil
}
