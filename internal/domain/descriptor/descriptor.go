package descriptor

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"
)

const (
	// Name is the distribution name.
	Name = "s3setup"
	// Author is the distribution author.
	Author = "Seagate"
	// Summary is the one-line distribution description.
	Summary = "s3setup python implementation"
	// Script is the installable entry point, relative to the base directory.
	Script = "s3setup/s3setup"
	// VersionFilename is the file holding the release version, next to the descriptor.
	VersionFilename = "VERSION"

	// metadataVersion is the PKG-INFO core metadata version written by PKGInfo.
	metadataVersion = "2.1"
)

// ErrInvalidDescriptor is wrapped by every ValidationError.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// unsafeVersionChars matches the runs setuptools replaces with a dash in file names.
//
//nolint:gochecknoglobals // Compiled once.
var unsafeVersionChars = regexp.MustCompile(`[^A-Za-z0-9.]+`)

// ValidationError reports which descriptor field failed a structural check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid descriptor: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDescriptor
}

// Descriptor is the metadata record handed to the packaging steps.
type Descriptor struct {
	// Name is the distribution name.
	Name string `yaml:"name" json:"name"`
	// Version is the trimmed contents of the VERSION file.
	Version string `yaml:"version" json:"version"`
	// Author is the distribution author.
	Author string `yaml:"author" json:"author"`
	// Packages lists the package directories included in the distribution.
	Packages []string `yaml:"packages" json:"packages"`
	// IncludePackageData pulls every file under a package directory into the distribution.
	IncludePackageData bool `yaml:"include_package_data" json:"include_package_data"`
	// Scripts lists installable scripts relative to the base directory.
	Scripts []string `yaml:"scripts" json:"scripts"`
	// Description is a one-line summary.
	Description string `yaml:"description" json:"description"`
	// PackageData maps a package to extra files shipped with it.
	PackageData map[string][]string `yaml:"package_data" json:"package_data"`
}

// New returns the s3setup descriptor for the given version.
func New(version string) *Descriptor {
	return &Descriptor{
		Name:               Name,
		Version:            version,
		Author:             Author,
		Packages:           []string{Name},
		IncludePackageData: true,
		Scripts:            []string{Script},
		Description:        Summary,
		PackageData:        map[string][]string{Name: {VersionFilename}},
	}
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}

	cloned := *d
	cloned.Packages = slices.Clone(d.Packages)
	cloned.Scripts = slices.Clone(d.Scripts)

	if d.PackageData != nil {
		cloned.PackageData = make(map[string][]string, len(d.PackageData))
		for pkg, files := range d.PackageData {
			cloned.PackageData[pkg] = slices.Clone(files)
		}
	}

	return &cloned
}

// DistName returns the distribution base name, e.g. "s3setup-1.2.3".
// It is built from SafeVersion and never contains a path separator.
func (d *Descriptor) DistName() string {
	version := d.SafeVersion()
	if version == "" {
		return d.Name
	}

	return d.Name + "-" + version
}

// SafeVersion returns the version in a form usable as a single path element.
// Every run of characters other than letters, digits and dots becomes "-",
// and leading or trailing dots and dashes are dropped so the result is never
// "." or "..". Version itself is left untouched.
func (d *Descriptor) SafeVersion() string {
	return strings.Trim(unsafeVersionChars.ReplaceAllString(d.Version, "-"), ".-")
}

// ScriptNames returns the base names scripts are installed under.
func (d *Descriptor) ScriptNames() []string {
	names := make([]string, 0, len(d.Scripts))
	for _, script := range d.Scripts {
		names = append(names, path.Base(script))
	}

	return names
}

// Validate performs structural checks only. The version format is never inspected.
func (d *Descriptor) Validate() error {
	if d == nil {
		return &ValidationError{Field: "descriptor", Message: "is nil"}
	}

	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}

	if len(d.Packages) == 0 {
		return &ValidationError{Field: "packages", Message: "must list at least one package"}
	}

	for i, script := range d.Scripts {
		if script == "" {
			return &ValidationError{Field: fmt.Sprintf("scripts[%d]", i), Message: "is empty"}
		}
	}

	for _, pkg := range slices.Sorted(maps.Keys(d.PackageData)) {
		if !slices.Contains(d.Packages, pkg) {
			return &ValidationError{
				Field:   "package_data." + pkg,
				Message: "refers to an undeclared package",
			}
		}
	}

	return nil
}

// PKGInfo renders the core metadata document shipped at the root of a source distribution.
func (d *Descriptor) PKGInfo() string {
	var builder strings.Builder

	writeField := func(key, value string) {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\n")
	}

	writeField("Metadata-Version", metadataVersion)
	writeField("Name", d.Name)
	writeField("Version", d.Version)
	writeField("Summary", d.Description)
	writeField("Author", d.Author)
	writeField("License", "UNKNOWN")
	writeField("Platform", "UNKNOWN")

	return builder.String()
}
