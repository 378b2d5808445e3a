package release

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/seagate/s3setup/internal/domain/descriptor"
)

const (
	// ManifestSuffix is appended to the distribution name to form the manifest file name.
	ManifestSuffix = ".manifest.yaml"
	// ArchiveSuffix is appended to the distribution name to form the archive file name.
	ArchiveSuffix = ".tar.gz"
	// PKGInfoFilename is the metadata document at the root of every archive.
	PKGInfoFilename = "PKG-INFO"
	// DescriptorFilename is the rendered descriptor at the root of every archive.
	DescriptorFilename = "setup.yaml"
)

var (
	// errNoChecksum is returned when a file has no recorded checksum.
	errNoChecksum = errors.New("checksum missing for file")
	// errManifestIncomplete is returned by Validate for manifests missing required parts.
	errManifestIncomplete = errors.New("manifest is incomplete")
	// errArchiveName is returned by Validate when the archive name does not follow the descriptor.
	errArchiveName = errors.New("archive name does not match the distribution")
)

// Actor identifies who produced a release.
type Actor struct {
	// Hostname is the machine the build ran on.
	Hostname string `yaml:"hostname"`
	// Username is the system user who ran the build.
	Username string `yaml:"username"`
}

// Archive describes the distribution archive.
type Archive struct {
	// Name is the archive file name, relative to the manifest's directory.
	Name string `yaml:"name"`
	// Size is the archive size in bytes.
	Size int64 `yaml:"size"`
	// Checksum is the base64 SHA-512 of the archive.
	Checksum string `yaml:"checksum"`
}

// Manifest contains metadata about a built source distribution.
type Manifest struct {
	// BuildID uniquely identifies the build that produced the archive.
	BuildID uuid.UUID `yaml:"build_id"`
	// CreatedAt is when the archive was written.
	CreatedAt time.Time `yaml:"created_at"`
	// BuiltBy is the actor that ran the build, when it could be detected.
	BuiltBy *Actor `yaml:"built_by,omitempty"`
	// Descriptor is the metadata record the archive was built from.
	Descriptor *descriptor.Descriptor `yaml:"descriptor"`
	// Archive describes the archive file.
	Archive Archive `yaml:"archive"`
	// Files maps archive paths, relative to the distribution root, to base64 checksums.
	Files map[string]string `yaml:"files"`
}

// NewManifest starts a manifest for a fresh build of desc.
func NewManifest(desc *descriptor.Descriptor, now time.Time) *Manifest {
	return &Manifest{
		BuildID:    uuid.New(),
		CreatedAt:  now.UTC(),
		Descriptor: desc.Clone(),
		Archive:    Archive{Name: desc.DistName() + ArchiveSuffix},
		Files:      make(map[string]string),
	}
}

// ManifestName returns the manifest file name for a descriptor.
func ManifestName(desc *descriptor.Descriptor) string {
	return desc.DistName() + ManifestSuffix
}

// DistRoot is the directory every archive entry lives under.
func (m *Manifest) DistRoot() string {
	return m.Descriptor.DistName()
}

// FileNames returns the recorded archive paths in sorted order.
func (m *Manifest) FileNames() []string {
	return slices.Sorted(maps.Keys(m.Files))
}

// Checksum returns the recorded checksum for an archive path.
func (m *Manifest) Checksum(name string) (string, error) {
	sum, ok := m.Files[name]
	if !ok {
		return "", fmt.Errorf("checksum for %s: %w", name, errNoChecksum)
	}

	return sum, nil
}

// Validate checks that the manifest carries everything installers and publishers need.
func (m *Manifest) Validate() error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: nil manifest", errManifestIncomplete)
	case m.BuildID == uuid.Nil:
		return fmt.Errorf("%w: build_id is required", errManifestIncomplete)
	case m.Descriptor == nil:
		return fmt.Errorf("%w: descriptor is required", errManifestIncomplete)
	case m.Archive.Name == "" || m.Archive.Checksum == "":
		return fmt.Errorf("%w: archive name and checksum are required", errManifestIncomplete)
	case len(m.Files) == 0:
		return fmt.Errorf("%w: files are required", errManifestIncomplete)
	}

	if err := m.Descriptor.Validate(); err != nil {
		return err
	}

	// The archive is opened next to the manifest, so its name must stay a plain file name.
	if want := m.Descriptor.DistName() + ArchiveSuffix; m.Archive.Name != want {
		return fmt.Errorf("%w: %q, expected %q", errArchiveName, m.Archive.Name, want)
	}

	return nil
}
