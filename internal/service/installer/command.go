package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/seagate/s3setup/internal/domain/release"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/repository/manifest"
	"github.com/seagate/s3setup/internal/service/common"
	"github.com/seagate/s3setup/internal/service/sdist"
)

const (
	// ScriptFileMode is applied to installed scripts.
	ScriptFileMode os.FileMode = 0o755
	// DataFileMode is applied to every other installed file.
	DataFileMode os.FileMode = 0o644
	// directoryMode is used for directories created under the prefix.
	directoryMode os.FileMode = 0o755
)

var (
	errPrefixRequired   = errors.New("install prefix must be provided")
	errIncompleteResult = errors.New("archive is missing files listed in the manifest")
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ManifestPath is the release manifest written by sdist.
	ManifestPath string
	// Prefix is the installation root.
	Prefix string
}

// Result reports what happened to each file.
type Result struct {
	// Installed lists target paths that were written.
	Installed []string
	// Skipped lists target paths already up to date.
	Skipped []string
}

// installer holds the state of a single installation.
type installer struct {
	manifest    *release.Manifest
	archivePath string
	prefix      string
	// scripts maps a script's archive path to the name it is installed under.
	scripts map[string]string
	result  *Result
}

// Run executes the installation.
func Run(ctx context.Context, opts *Options) error {
	result, err := Install(ctx, opts)
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}

	logger.InfoKV(ctx, "Installation completed",
		"installed", len(result.Installed), "up_to_date", len(result.Skipped))

	return nil
}

// Install verifies the archive referenced by the manifest and applies its files under the prefix.
func Install(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "install")

	if opts.Prefix == "" {
		return nil, errPrefixRequired
	}

	prefix, err := filepath.Abs(opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("resolve prefix: %w", err)
	}

	repo := manifest.NewFileRepository(opts.ManifestPath)

	m, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	inst := &installer{
		manifest:    m,
		archivePath: filepath.Join(repo.Dir(), m.Archive.Name),
		prefix:      prefix,
		scripts:     scriptTargets(m),
		result:      new(Result),
	}

	ctx = logger.WithKV(ctx, "dist", m.DistRoot())

	logger.Info(ctx, "Verifying the archive checksum")

	if err = sdist.VerifyArchive(inst.archivePath, m); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Installing files", "prefix", prefix)

	if err = inst.apply(ctx); err != nil {
		return nil, err
	}

	return inst.result, nil
}

// apply installs every archive entry.
func (i *installer) apply(ctx context.Context) error {
	archive, err := os.Open(i.archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = archive.Close()
	}()

	seen := make(map[string]struct{}, len(i.manifest.Files))

	err = sdist.ReadArchive(archive, i.manifest.DistRoot(), func(name string, _ fs.FileMode, body io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		seen[name] = struct{}{}

		return i.applyFile(ctx, name, body)
	})
	if err != nil {
		return err
	}

	var missing []string

	for _, name := range i.manifest.FileNames() {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errIncompleteResult, strings.Join(missing, ", "))
	}

	return nil
}

// scriptTargets pairs every declared script with its installed name.
func scriptTargets(m *release.Manifest) map[string]string {
	desc := m.Descriptor
	names := desc.ScriptNames()

	targets := make(map[string]string, len(names))
	for idx, script := range desc.Scripts {
		targets[path.Clean(script)] = names[idx]
	}

	return targets
}

// target maps an archive path to its install location and mode.
func (i *installer) target(name string) (string, os.FileMode) {
	if script, ok := i.scripts[path.Clean(name)]; ok {
		return filepath.Join(i.prefix, "bin", script), ScriptFileMode
	}

	desc := i.manifest.Descriptor
	libDir := filepath.Join(i.prefix, "lib", desc.Name, desc.SafeVersion())

	return filepath.Join(libDir, filepath.FromSlash(name)), DataFileMode
}

// applyFile writes one file with checksum validation, skipping it when already current.
func (i *installer) applyFile(ctx context.Context, name string, body io.Reader) error {
	encoded, err := i.manifest.Checksum(name)
	if err != nil {
		return err
	}

	checksum, err := common.DecodeChecksum(encoded)
	if err != nil {
		return err
	}

	targetPath, mode := i.target(name)

	if current, sumErr := common.GetFileChecksum(targetPath); sumErr == nil && bytes.Equal(current, checksum) {
		logger.DebugKV(ctx, "File is up to date", "path", targetPath)
		i.result.Skipped = append(i.result.Skipped, targetPath)

		return nil
	}

	if err = os.MkdirAll(filepath.Dir(targetPath), directoryMode); err != nil {
		return fmt.Errorf("create directory for %s: %w", targetPath, err)
	}

	// Apply replaces an existing target, so create an empty one first.
	if _, err = os.Stat(targetPath); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		if placeholder, err = os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY, mode); err != nil {
			return err
		}

		_ = placeholder.Close()
	}

	logger.DebugKV(ctx, "Applying file", "file", name, "path", targetPath)

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       common.DefaultChecksumFunction,
	}

	if err = goupdate.Apply(body, options); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}

	// Apply keeps the replaced file next to the target when it cannot remove it.
	oldFileName := filepath.Join(filepath.Dir(targetPath), "."+filepath.Base(targetPath)+".old")
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	i.result.Installed = append(i.result.Installed, targetPath)

	return nil
}
