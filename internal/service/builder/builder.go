package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/seagate/s3setup/internal/domain/descriptor"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/repository/versionfile"
)

// Result is a built descriptor together with the directory it was resolved against.
type Result struct {
	// BaseDir is the absolute directory holding VERSION and the package sources.
	BaseDir string
	// Descriptor is the metadata record.
	Descriptor *descriptor.Descriptor
}

// Build resolves baseDir to an absolute path, reads its VERSION file and
// returns the descriptor. On any failure no descriptor is returned.
func Build(ctx context.Context, baseDir string) (*Result, error) {
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", baseDir, err)
	}

	desc, err := BuildFrom(ctx, versionfile.NewFileRepository(absDir))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Descriptor built", "base_dir", absDir, "version", desc.Version)

	return &Result{
		BaseDir:    absDir,
		Descriptor: desc,
	}, nil
}

// BuildFrom builds the descriptor around the version supplied by repo.
func BuildFrom(ctx context.Context, repo versionfile.Repository) (*descriptor.Descriptor, error) {
	version, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load version: %w", err)
	}

	return descriptor.New(version), nil
}
