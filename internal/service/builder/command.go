package builder

import (
	"context"
	"io"
	"os"

	"github.com/seagate/s3setup/internal/config"
	"github.com/seagate/s3setup/internal/logger"
)

// Options contains inputs for the describe entry point.
type Options struct {
	// BaseDir is the directory holding VERSION.
	BaseDir string
	// Format is one of config.Formats().
	Format string
	// Output receives the rendered descriptor; nil means stdout.
	Output io.Writer
}

// Run builds the descriptor and renders it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "describe")

	format := opts.Format
	if format == "" {
		format = config.FormatYAML
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	result, err := Build(ctx, opts.BaseDir)
	if err != nil {
		return err
	}

	return Render(out, result.Descriptor, format)
}
