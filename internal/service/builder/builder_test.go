package builder

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seagate/s3setup/internal/domain/descriptor"
)

// baseDirWithVersion creates a base directory holding a VERSION file.
func baseDirWithVersion(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(contents), 0o600))

	return dir
}

// TestBuild_Scenarios covers the concrete VERSION contents from the packaging contract.
func TestBuild_Scenarios(t *testing.T) {
	t.Parallel()

	result, err := Build(context.Background(), baseDirWithVersion(t, "1.2.3\n"))
	require.NoError(t, err)
	require.Equal(t, "1.2.3", result.Descriptor.Version)
	require.Equal(t, "s3setup", result.Descriptor.Name)
	require.Equal(t, []string{"s3setup/s3setup"}, result.Descriptor.Scripts)
	require.True(t, filepath.IsAbs(result.BaseDir))

	result, err = Build(context.Background(), baseDirWithVersion(t, "  2.0.0  "))
	require.NoError(t, err)
	require.Equal(t, "2.0.0", result.Descriptor.Version)
}

// TestBuild_EmptyVersion documents that an empty file yields an empty version without error.
func TestBuild_EmptyVersion(t *testing.T) {
	t.Parallel()

	result, err := Build(context.Background(), baseDirWithVersion(t, ""))
	require.NoError(t, err)
	require.Empty(t, result.Descriptor.Version)
	require.Equal(t, []string{"s3setup"}, result.Descriptor.Packages)
}

// TestBuild_MissingVersion verifies the whole build aborts with a file-access error.
func TestBuild_MissingVersion(t *testing.T) {
	t.Parallel()

	result, err := Build(context.Background(), t.TempDir())
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Nil(t, result)
}

// TestBuild_RelativeBaseDir resolves a relative base directory against the working directory.
func TestBuild_RelativeBaseDir(t *testing.T) {
	dir := baseDirWithVersion(t, "0.9.0")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))
	t.Chdir(filepath.Join(dir, "sub"))

	result, err := Build(context.Background(), "..")
	require.NoError(t, err)
	require.Equal(t, "0.9.0", result.Descriptor.Version)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(result.BaseDir)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

type stubRepository struct {
	version string
	err     error
}

func (s stubRepository) Load(context.Context) (string, error) {
	return s.version, s.err
}

// TestBuildFrom uses an injected repository.
func TestBuildFrom(t *testing.T) {
	t.Parallel()

	desc, err := BuildFrom(context.Background(), stubRepository{version: "7.0.0"})
	require.NoError(t, err)
	require.Equal(t, descriptor.New("7.0.0"), desc)

	errBoom := errors.New("boom")

	desc, err = BuildFrom(context.Background(), stubRepository{err: errBoom})
	require.ErrorIs(t, err, errBoom)
	require.Nil(t, desc)
}

// TestRender_YAML ensures the YAML rendering decodes back to the same descriptor.
func TestRender_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	want := descriptor.New("1.2.3")
	require.NoError(t, Render(&buf, want, "yaml"))
	require.Contains(t, buf.String(), "include_package_data: true")

	var got descriptor.Descriptor
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, want, &got)
}

// TestRender_JSON checks the JSON field names.
func TestRender_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, Render(&buf, descriptor.New("1.2.3"), "json"))

	var fields map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &fields))
	require.Equal(t, "1.2.3", fields["version"])
	require.Equal(t, true, fields["include_package_data"])
	require.Contains(t, fields, "package_data")
}

// TestRender_Table checks that every field shows up in the table.
func TestRender_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, Render(&buf, descriptor.New("1.2.3"), "table"))

	out := buf.String()
	for _, want := range []string{"s3setup", "1.2.3", "Seagate", "s3setup/s3setup", "package_data[s3setup]", "VERSION"} {
		require.Contains(t, out, want)
	}
}

// TestRender_UnknownFormat rejects unsupported formats.
func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Render(new(bytes.Buffer), descriptor.New("1"), "xml"), errUnknownFormat)
}

// TestRun writes the descriptor to the provided output.
func TestRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := Run(context.Background(), &Options{
		BaseDir: baseDirWithVersion(t, "4.5.6\n"),
		Format:  "yaml",
		Output:  &buf,
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "version: 4.5.6")
}
