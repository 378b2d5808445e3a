package versionfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeVersion creates a VERSION file with the given contents in a fresh directory.
func writeVersion(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(contents), 0o600))

	return dir
}

// TestFileRepository_Load covers trimming of surrounding whitespace.
func TestFileRepository_Load(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"1.2.3\n":           "1.2.3",
		"  2.0.0  ":         "2.0.0",
		"\t\r\n3.1.4-rc1\n": "3.1.4-rc1",
		"1.0 beta\n":        "1.0 beta",
		"":                  "",
		" \n\t ":            "",
	}

	for contents, want := range cases {
		repo := NewFileRepository(writeVersion(t, contents))

		got, err := repo.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got, "contents %q", contents)
	}
}

// TestFileRepository_NotFound verifies a missing file is a wrapped fs.ErrNotExist.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())

	v, err := repo.Load(context.Background())
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Empty(t, v)
	require.Contains(t, err.Error(), "VERSION")
}

// TestFileRepository_Unreadable verifies that a directory named VERSION fails to read.
func TestFileRepository_Unreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "VERSION"), 0o700))

	_, err := NewFileRepository(dir).Load(context.Background())
	require.Error(t, err)
}

// TestTrim_Idempotent checks that trimming twice equals trimming once.
func TestTrim_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"1.2.3\n", "  2.0.0  ", "", "\n\n", " a b "} {
		once := Trim(raw)
		require.Equal(t, once, Trim(once))
	}
}

// TestTrim_Separators strips the ASCII separator characters along with ordinary whitespace.
func TestTrim_Separators(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.2.3", Trim("\x1c1.2.3\x1f"))
	require.Equal(t, "1.2.3", Trim("\x1d\t 1.2.3 \x1e\n"))
	require.Equal(t, "1.2.3", Trim("\u00a01.2.3\u0085"))
	require.Equal(t, "1.\x1c2", Trim("1.\x1c2"))
	require.Equal(t, "\x1b1.2.3", Trim("\x1b1.2.3"))
}

// TestNewFileRepository_Path joins the base directory with VERSION.
func TestNewFileRepository_Path(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("/opt", "s3setup", "VERSION"), NewFileRepository("/opt/s3setup/").Path())
}
