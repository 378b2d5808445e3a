package sdist

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/seagate/s3setup/internal/domain/release"
	"github.com/seagate/s3setup/internal/service/common"
)

// ErrArchiveMismatch is returned when an archive does not match its manifest.
var ErrArchiveMismatch = errors.New("archive does not match its manifest")

// VerifyArchive compares the archive at archivePath with the checksum recorded in m.
func VerifyArchive(archivePath string, m *release.Manifest) error {
	want, err := common.DecodeChecksum(m.Archive.Checksum)
	if err != nil {
		return err
	}

	got, err := common.GetFileChecksum(archivePath)
	if err != nil {
		return fmt.Errorf("checksum archive: %w", err)
	}

	if !bytes.Equal(want, got) {
		return fmt.Errorf("%s: %w", archivePath, ErrArchiveMismatch)
	}

	return nil
}
