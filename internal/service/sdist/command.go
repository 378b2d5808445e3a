package sdist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seagate/s3setup/internal/domain/release"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/repository/manifest"
	"github.com/seagate/s3setup/internal/service/builder"
	"github.com/seagate/s3setup/internal/service/common"
)

// DefaultFileMode is used for archives written to the output directory.
const DefaultFileMode os.FileMode = 0o644

// Options contains inputs for the sdist entry point.
type Options struct {
	// BaseDir is the directory holding VERSION and the package sources.
	BaseDir string
	// OutputDir receives the archive and its manifest.
	OutputDir string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Result lists what a build produced.
type Result struct {
	// Manifest is the saved release manifest.
	Manifest *release.Manifest
	// ManifestPath is where the manifest was written.
	ManifestPath string
	// ArchivePath is where the archive was written.
	ArchivePath string
}

// Run executes the sdist workflow and logs the produced artifacts.
func Run(ctx context.Context, opts *Options) error {
	result, err := Package(ctx, opts)
	if err != nil {
		return fmt.Errorf("sdist failed: %w", err)
	}

	printNextSteps(ctx, result)

	return nil
}

// Package builds the descriptor, writes the archive and saves the manifest.
func Package(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "sdist")

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	marker, err := common.AcquireMarker(ctx, outputDir)
	if err != nil {
		return nil, err
	}

	defer marker.Release()

	built, err := builder.Build(ctx, opts.BaseDir)
	if err != nil {
		return nil, err
	}

	desc := built.Descriptor
	if err = desc.Validate(); err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "dist", desc.DistName())

	logger.Info(ctx, "Collecting distribution files")

	files, err := Collect(ctx, built.BaseDir, desc)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	m := release.NewManifest(desc, now())

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		m.BuiltBy = actor
	} else {
		logger.WarnKV(ctx, "Unable to detect build actor", "error", actorErr)
	}

	docs, err := metadataDocuments(m)
	if err != nil {
		return nil, err
	}

	if err = fillChecksums(ctx, m, docs, files); err != nil {
		return nil, err
	}

	archivePath := filepath.Join(outputDir, m.Archive.Name)

	logger.InfoKV(ctx, "Writing archive", "path", archivePath, "files", len(files)+len(docs))

	archived, err := writeArchive(archivePath, m.DistRoot(), docs, files, m.CreatedAt.Truncate(time.Second))
	if err != nil {
		return nil, err
	}

	m.Archive.Size = archived.size
	m.Archive.Checksum = common.EncodeChecksum(archived.checksum)

	manifestPath := filepath.Join(outputDir, release.ManifestName(desc))

	logger.InfoKV(ctx, "Saving release manifest", "path", manifestPath)

	if err = manifest.NewFileRepository(manifestPath).Save(ctx, m); err != nil {
		return nil, err
	}

	return &Result{
		Manifest:     m,
		ManifestPath: manifestPath,
		ArchivePath:  archivePath,
	}, nil
}

// metadataDocuments renders the files generated at the distribution root.
func metadataDocuments(m *release.Manifest) ([]document, error) {
	rendered, err := yaml.Marshal(m.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}

	return []document{
		{name: release.PKGInfoFilename, data: []byte(m.Descriptor.PKGInfo())},
		{name: release.DescriptorFilename, data: rendered},
	}, nil
}

// fillChecksums records a checksum for every archive entry.
func fillChecksums(ctx context.Context, m *release.Manifest, docs []document, files []File) error {
	paths := make(map[string]string, len(files))
	for _, f := range files {
		paths[f.Name] = f.Path
	}

	sums, err := common.ChecksumFiles(ctx, paths)
	if err != nil {
		return err
	}

	for name, sum := range sums {
		m.Files[name] = sum
	}

	for _, doc := range docs {
		m.Files[doc.name] = common.EncodeChecksum(common.BytesChecksum(doc.data))
	}

	return nil
}

// printNextSteps logs human-readable guidance for the produced files.
func printNextSteps(ctx context.Context, result *Result) {
	var message strings.Builder

	message.WriteString("Source distribution ")
	message.WriteString(result.Manifest.DistRoot())
	message.WriteString(" is ready:\n")
	message.WriteString(result.ArchivePath)
	message.WriteString(",\n")
	message.WriteString(result.ManifestPath)
	message.WriteString("\n\nInstall it with: s3setup-packager install --manifest ")
	message.WriteString(result.ManifestPath)
	message.WriteString(" --prefix <dir>")
	message.WriteString("\nPublish it with: s3setup-packager publish --manifest ")
	message.WriteString(result.ManifestPath)

	logger.Info(ctx, message.String())
}
