package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/seagate/s3setup/internal/domain/release"
)

// DefaultFileMode is the permission manifests are written with.
const DefaultFileMode os.FileMode = 0o644

// ErrNotFound is returned when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// FileRepository stores a manifest as YAML at a fixed path.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Dir returns the directory holding the manifest, where its archive is expected too.
func (r *FileRepository) Dir() string {
	return filepath.Dir(r.path)
}

// Load reads and validates the manifest.
func (r *FileRepository) Load(_ context.Context) (*release.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, ErrNotFound)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m release.Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if err = m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}

	return &m, nil
}

// Save writes the manifest through a temporary file so readers never see a partial document.
func (r *FileRepository) Save(_ context.Context, m *release.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
