package versionfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/seagate/s3setup/internal/domain/descriptor"
)

// Repository defines how the release version is obtained.
type Repository interface {
	Load(ctx context.Context) (string, error)
}

// FileRepository reads the version from a file on disk.
type FileRepository struct {
	// path is the filesystem location of the version file.
	path string
}

// NewFileRepository creates a repository for the VERSION file inside baseDir.
func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{
		path: filepath.Join(filepath.Clean(baseDir), descriptor.VersionFilename),
	}
}

// Path returns the file the repository reads.
func (r *FileRepository) Path() string {
	return r.path
}

// Load opens the version file, reads it whole and returns it trimmed.
// A missing or unreadable file is returned as a wrapped fs error.
// An empty file yields an empty version.
func (r *FileRepository) Load(_ context.Context) (string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return "", fmt.Errorf("open version file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	contents, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read version file %s: %w", r.path, err)
	}

	return Trim(string(contents)), nil
}

// Trim strips leading and trailing whitespace, newlines included.
// The ASCII file, group, record and unit separators count as whitespace too.
func Trim(raw string) string {
	return strings.TrimFunc(raw, isVersionSpace)
}

func isVersionSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}
