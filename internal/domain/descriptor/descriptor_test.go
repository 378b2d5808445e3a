package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNew verifies the constant fields of the s3setup descriptor.
func TestNew(t *testing.T) {
	t.Parallel()

	d := New("1.2.3")

	require.Equal(t, "s3setup", d.Name)
	require.Equal(t, "1.2.3", d.Version)
	require.Equal(t, "Seagate", d.Author)
	require.Equal(t, []string{"s3setup"}, d.Packages)
	require.True(t, d.IncludePackageData)
	require.Equal(t, []string{"s3setup/s3setup"}, d.Scripts)
	require.Equal(t, "s3setup python implementation", d.Description)
	require.Equal(t, map[string][]string{"s3setup": {"VERSION"}}, d.PackageData)
	require.NoError(t, d.Validate())
}

// TestNew_VersionIsNotValidated checks that any version string, even empty, is accepted.
func TestNew_VersionIsNotValidated(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "not-a-version", "1.0.0-rc1+build.5"} {
		d := New(v)
		require.Equal(t, v, d.Version)
		require.Equal(t, []string{"s3setup"}, d.Packages)
		require.NoError(t, d.Validate())
	}
}

// TestClone verifies that Clone returns a deep copy and handles nil safely.
func TestClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Descriptor)(nil).Clone())

	d := New("2.0.0")
	c := d.Clone()

	require.Equal(t, d, c)
	require.NotSame(t, d, c)

	c.Packages[0] = "changed"
	c.PackageData["s3setup"][0] = "changed"
	c.Scripts = append(c.Scripts, "extra")

	require.Equal(t, []string{"s3setup"}, d.Packages)
	require.Equal(t, []string{"VERSION"}, d.PackageData["s3setup"])
	require.Len(t, d.Scripts, 1)
}

// TestDistName covers versioned and unversioned names.
func TestDistName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "s3setup-1.2.3", New("1.2.3").DistName())
	require.Equal(t, "s3setup", New("").DistName())
}

// TestSafeVersion keeps path separators and dot segments out of file names.
func TestSafeVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    string
	}{
		{version: "1.2.3", want: "1.2.3"},
		{version: "1.0/beta", want: "1.0-beta"},
		{version: "x/../../escaped", want: "x-..-..-escaped"},
		{version: "1.0 rc 1", want: "1.0-rc-1"},
		{version: `..\..`, want: ""},
		{version: "..", want: ""},
		{version: "", want: ""},
	}

	for _, tt := range tests {
		desc := New(tt.version)
		require.Equal(t, tt.want, desc.SafeVersion(), tt.version)
		require.Equal(t, tt.version, desc.Version)
		require.NotContains(t, desc.DistName(), "/")
		require.NotContains(t, desc.DistName(), `\`)
	}

	require.Equal(t, "s3setup-1.0-beta", New("1.0/beta").DistName())
}

// TestScriptNames returns script base names.
func TestScriptNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"s3setup"}, New("1").ScriptNames())
}

// TestValidate checks each structural rule.
func TestValidate(t *testing.T) {
	t.Parallel()

	var nilDesc *Descriptor
	require.ErrorIs(t, nilDesc.Validate(), ErrInvalidDescriptor)

	cases := map[string]func(d *Descriptor){
		"name":                 func(d *Descriptor) { d.Name = " " },
		"packages":             func(d *Descriptor) { d.Packages = nil },
		"scripts[0]":           func(d *Descriptor) { d.Scripts = []string{""} },
		"package_data.unknown": func(d *Descriptor) { d.PackageData["unknown"] = []string{"x"} },
	}

	for field, mutate := range cases {
		d := New("1.0.0")
		mutate(d)

		err := d.Validate()
		require.ErrorIs(t, err, ErrInvalidDescriptor, field)

		var vErr *ValidationError

		require.ErrorAs(t, err, &vErr)
		require.Equal(t, field, vErr.Field)
	}
}

// TestPKGInfo checks the rendered metadata headers.
func TestPKGInfo(t *testing.T) {
	t.Parallel()

	info := New("1.2.3").PKGInfo()

	require.Contains(t, info, "Metadata-Version: 2.1\n")
	require.Contains(t, info, "Name: s3setup\n")
	require.Contains(t, info, "Version: 1.2.3\n")
	require.Contains(t, info, "Summary: s3setup python implementation\n")
	require.Contains(t, info, "Author: Seagate\n")
}
