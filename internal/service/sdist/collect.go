package sdist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/seagate/s3setup/internal/domain/descriptor"
	"github.com/seagate/s3setup/internal/logger"
)

var (
	errPackageNotFound = errors.New("package directory not found")
	errScriptNotFound  = errors.New("script not found")
	errNotRegularFile  = errors.New("not a regular file")
)

// File is a source file selected for the distribution.
type File struct {
	// Name is the slash-separated path relative to the base directory and the distribution root.
	Name string
	// Path is the file on disk.
	Path string
	// Mode is the permission bits the file is archived with.
	Mode fs.FileMode
}

// ignoredDirs are build leftovers never shipped inside a package.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ignoredDirs = []string{"__pycache__", ".git", ".pytest_cache"}

// Collect selects every file the descriptor ships, sorted by name.
// A missing package directory or script is an error. A missing package_data
// entry is skipped with a warning.
func Collect(ctx context.Context, baseDir string, desc *descriptor.Descriptor) ([]File, error) {
	selected := make(map[string]File)

	add := func(name string) error {
		name = path.Clean(name)
		if _, ok := selected[name]; ok {
			return nil
		}

		full := filepath.Join(baseDir, filepath.FromSlash(name))

		info, err := os.Stat(full)
		if err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s: %w", name, errNotRegularFile)
		}

		selected[name] = File{Name: name, Path: full, Mode: archiveMode(info.Mode())}

		return nil
	}

	if err := add(descriptor.VersionFilename); err != nil {
		return nil, fmt.Errorf("version file: %w", err)
	}

	for _, pkg := range desc.Packages {
		names, err := packageFiles(baseDir, pkg, desc.IncludePackageData)
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			if err = add(name); err != nil {
				return nil, err
			}
		}
	}

	for _, script := range desc.Scripts {
		if err := add(script); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", script, errScriptNotFound)
			}

			return nil, err
		}
	}

	for _, pkg := range slices.Sorted(maps.Keys(desc.PackageData)) {
		for _, entry := range desc.PackageData[pkg] {
			name := path.Join(pkg, entry)

			err := add(name)
			if errors.Is(err, fs.ErrNotExist) {
				logger.WarnKV(ctx, "Package data file not found, skipping", "package", pkg, "file", entry)

				continue
			}

			if err != nil {
				return nil, err
			}
		}
	}

	files := make([]File, 0, len(selected))
	for _, f := range selected {
		files = append(files, f)
	}

	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Name, b.Name)
	})

	return files, nil
}

// packageFiles lists the files of one package directory. Without
// include_package_data only Python modules are shipped.
func packageFiles(baseDir, pkg string, includeData bool) ([]string, error) {
	root := filepath.Join(baseDir, filepath.FromSlash(pkg))

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", pkg, errPackageNotFound)
	}

	var names []string

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if p != root && slices.Contains(ignoredDirs, d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || strings.HasSuffix(d.Name(), ".pyc") {
			return nil
		}

		if !includeData && !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			return err
		}

		names = append(names, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk package %s: %w", pkg, err)
	}

	return names, nil
}

// archiveMode normalizes permissions: executables become 0755, everything else 0644.
func archiveMode(mode fs.FileMode) fs.FileMode {
	if mode.Perm()&0o111 != 0 {
		return 0o755
	}

	return 0o644
}
