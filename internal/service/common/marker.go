//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seagate/s3setup/internal/logger"
)

const (
	// MarkerFilename marks that a build is writing into an output directory.
	MarkerFilename = ".s3setup-build.marker"

	// MarkerLifetime is the period after which a leftover marker is treated as stale.
	MarkerLifetime = 30 * time.Second
)

// ErrBuildRunning is returned when another build holds a fresh marker.
var ErrBuildRunning = errors.New("another build is running in this output directory")

// Marker is a held build marker.
type Marker struct {
	path string
}

// AcquireMarker creates the build marker inside dir, removing a stale one first.
func AcquireMarker(ctx context.Context, dir string) (*Marker, error) {
	path := filepath.Join(dir, MarkerFilename)

	logger.DebugKV(ctx, "Checking for the presence of a build marker", "path", path)

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(file, "%d\n", os.Getpid())

			if err = file.Close(); err != nil {
				return nil, fmt.Errorf("write build marker: %w", err)
			}

			return &Marker{path: path}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create build marker: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}

		if time.Since(info.ModTime()) <= MarkerLifetime {
			return nil, ErrBuildRunning
		}

		logger.Info(ctx, "The build marker is too old, removing it")

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale build marker: %w", err)
		}
	}

	return nil, ErrBuildRunning
}

// Release removes the marker. It is safe to call on a nil marker.
func (m *Marker) Release() {
	if m == nil {
		return
	}

	_ = os.Remove(m.path)
}
