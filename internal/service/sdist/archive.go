package sdist

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/seagate/s3setup/internal/service/common"
)

// document is an in-memory file written at the distribution root.
type document struct {
	name string
	data []byte
}

// archiveResult describes the written tarball.
type archiveResult struct {
	size     int64
	checksum []byte
}

// writeArchive writes a gzip-compressed tarball to dst with every entry under root/.
// The tarball is written to a temporary file first and renamed into place.
func writeArchive(dst, root string, docs []document, files []File, modTime time.Time) (*archiveResult, error) {
	tmp := dst + ".tmp"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	result, err := streamArchive(out, root, docs, files, modTime)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close archive: %w", closeErr)
	}

	if err != nil {
		_ = os.Remove(tmp)

		return nil, err
	}

	if err = os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)

		return nil, fmt.Errorf("move archive into place: %w", err)
	}

	return result, nil
}

func streamArchive(out io.Writer, root string, docs []document, files []File, modTime time.Time) (*archiveResult, error) {
	hasher := common.DefaultChecksumFunction.New()
	counter := &countingWriter{w: io.MultiWriter(out, hasher)}

	gz, err := gzip.NewWriterLevel(counter, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}

	gz.Name = root + ".tar"
	gz.ModTime = modTime

	tw := tar.NewWriter(gz)

	if err = writeDir(tw, root, modTime); err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if err = writeDocument(tw, root, doc, modTime); err != nil {
			return nil, err
		}
	}

	for _, f := range files {
		if err = writeFile(tw, root, f); err != nil {
			return nil, err
		}
	}

	if err = tw.Close(); err != nil {
		return nil, fmt.Errorf("finish tar stream: %w", err)
	}

	if err = gz.Close(); err != nil {
		return nil, fmt.Errorf("finish gzip stream: %w", err)
	}

	return &archiveResult{size: counter.n, checksum: hasher.Sum(nil)}, nil
}

func writeDir(tw *tar.Writer, root string, modTime time.Time) error {
	//nolint:exhaustruct // Remaining header fields are irrelevant for a directory.
	header := &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     root + "/",
		Mode:     0o755,
		ModTime:  modTime,
		Format:   tar.FormatPAX,
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}

	return nil
}

func writeDocument(tw *tar.Writer, root string, doc document, modTime time.Time) error {
	//nolint:exhaustruct // Ownership fields stay zero for reproducible archives.
	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     path.Join(root, doc.name),
		Mode:     0o644,
		Size:     int64(len(doc.data)),
		ModTime:  modTime,
		Format:   tar.FormatPAX,
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}

	if _, err := tw.Write(doc.data); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}

	return nil
}

func writeFile(tw *tar.Writer, root string, f File) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}

	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.Name, err)
	}

	//nolint:exhaustruct // Ownership fields stay zero for reproducible archives.
	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     path.Join(root, f.Name),
		Mode:     int64(f.Mode.Perm()),
		Size:     info.Size(),
		ModTime:  info.ModTime().Truncate(time.Second),
		Format:   tar.FormatPAX,
	}

	if err = tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}

	if _, err = io.Copy(tw, src); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}

	return nil
}

// countingWriter counts bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

// ReadArchive walks a distribution archive and calls fn for every regular file
// with its path relative to root.
func ReadArchive(r io.Reader, root string, fn func(name string, mode fs.FileMode, body io.Reader) error) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}

	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read tar stream: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		name, ok := relativeToRoot(root, header.Name)
		if !ok {
			return fmt.Errorf("%w: %s", errOutsideRoot, header.Name)
		}

		if err = fn(name, fs.FileMode(header.Mode).Perm(), tr); err != nil {
			return err
		}
	}
}

var errOutsideRoot = errors.New("archive entry outside the distribution root")

// relativeToRoot strips root/ from an archive entry name and rejects anything escaping it.
func relativeToRoot(root, name string) (string, bool) {
	rel, found := strings.CutPrefix(path.Clean(name), root+"/")
	if !found || !fs.ValidPath(rel) {
		return "", false
	}

	return rel, true
}
