//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

// DefaultChecksumFunction is used to calculate release file hashes.
const DefaultChecksumFunction crypto.Hash = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	return ReaderChecksum(file)
}

// ReaderChecksum hashes everything r yields.
func ReaderChecksum(r io.Reader) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// BytesChecksum hashes an in-memory document.
func BytesChecksum(data []byte) []byte {
	hasher := DefaultChecksumFunction.New()
	_, _ = hasher.Write(data)

	return hasher.Sum(nil)
}

// EncodeChecksum renders a checksum the way manifests store it.
func EncodeChecksum(sum []byte) string {
	return base64.StdEncoding.EncodeToString(sum)
}

// DecodeChecksum parses a checksum stored in a manifest.
func DecodeChecksum(encoded string) ([]byte, error) {
	sum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum: %w", err)
	}

	return sum, nil
}

// ChecksumFiles hashes files concurrently. The result maps each key of files
// to the encoded checksum of the path it points to.
func ChecksumFiles(ctx context.Context, files map[string]string) (map[string]string, error) {
	var (
		mu     sync.Mutex
		result = make(map[string]string, len(files))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for name, path := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			sum, err := GetFileChecksum(path)
			if err != nil {
				return fmt.Errorf("checksum %s: %w", name, err)
			}

			mu.Lock()
			result[name] = EncodeChecksum(sum)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
