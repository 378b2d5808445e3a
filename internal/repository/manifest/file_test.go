package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seagate/s3setup/internal/domain/descriptor"
	"github.com/seagate/s3setup/internal/domain/release"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.manifest.yaml"))

	m, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal manifest.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, "s3setup-1.2.3.manifest.yaml"))

	want := release.NewManifest(descriptor.New("1.2.3"), time.Now().Truncate(time.Second))
	want.BuiltBy = &release.Actor{Hostname: "build-01", Username: "jenkins"}
	want.Archive.Size = 42
	want.Archive.Checksum = "c3Vt"
	want.Files["VERSION"] = "dmVy"

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.BuildID, got.BuildID)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, want.BuiltBy, got.BuiltBy)
	require.Equal(t, want.Descriptor, got.Descriptor)
	require.Equal(t, want.Archive, got.Archive)
	require.Equal(t, want.Files, got.Files)

	_, err = os.Stat(repo.Path() + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, dir, repo.Dir())
}

// TestFileRepository_Invalid rejects manifests missing required parts.
func TestFileRepository_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files: {}\n"), 0o600))

	_, err := NewFileRepository(path).Load(context.Background())
	require.Error(t, err)
}
