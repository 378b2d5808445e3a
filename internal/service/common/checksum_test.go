//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"crypto/sha512"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGetFileChecksum compares against a direct SHA-512 of the contents.
func TestGetFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("s3setup"), 0o600))

	got, err := GetFileChecksum(path)
	require.NoError(t, err)

	want := sha512.Sum512([]byte("s3setup"))
	require.Equal(t, want[:], got)
	require.Equal(t, want[:], BytesChecksum([]byte("s3setup")))

	fromReader, err := ReaderChecksum(strings.NewReader("s3setup"))
	require.NoError(t, err)
	require.Equal(t, want[:], fromReader)

	_, err = GetFileChecksum(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

// TestEncodeDecodeChecksum round-trips the manifest encoding and rejects garbage.
func TestEncodeDecodeChecksum(t *testing.T) {
	t.Parallel()

	sum := BytesChecksum([]byte("x"))

	decoded, err := DecodeChecksum(EncodeChecksum(sum))
	require.NoError(t, err)
	require.Equal(t, sum, decoded)

	_, err = DecodeChecksum("%%%")
	require.Error(t, err)
}

// TestChecksumFiles hashes several files and fails on a missing one.
func TestChecksumFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{}

	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
		files[name] = path
	}

	sums, err := ChecksumFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, sums, 3)
	require.Equal(t, EncodeChecksum(BytesChecksum([]byte("b"))), sums["b"])

	files["missing"] = filepath.Join(dir, "missing")

	_, err = ChecksumFiles(context.Background(), files)
	require.ErrorIs(t, err, fs.ErrNotExist)
}
