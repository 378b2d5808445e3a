package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/service/builder"
)

// ErrFindings is returned when the check fails: always for errors, and for warnings in strict mode.
var ErrFindings = errors.New("descriptor check failed")

// Options contains inputs for the check entry point.
type Options struct {
	// BaseDir is the directory holding VERSION and the package sources.
	BaseDir string
	// Strict turns warnings into a failure.
	Strict bool
	// Output receives the findings table; nil means stdout.
	Output io.Writer
}

// Run builds the descriptor and reports findings.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "check")

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	result, err := builder.Build(ctx, opts.BaseDir)
	if err != nil {
		return err
	}

	findings := Inspect(result.BaseDir, result.Descriptor)
	Render(out, findings)

	var warnings, errs int

	for _, f := range findings {
		if f.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	logger.InfoKV(ctx, "Descriptor checked",
		"version", result.Descriptor.Version, "warnings", warnings, "errors", errs)

	if errs > 0 || (opts.Strict && warnings > 0) {
		return fmt.Errorf("%w: %d error(s), %d warning(s)", ErrFindings, errs, warnings)
	}

	return nil
}
