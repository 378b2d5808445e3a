package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/seagate/s3setup/internal/config"
	"github.com/seagate/s3setup/internal/domain/release"
	"github.com/seagate/s3setup/internal/logger"
	"github.com/seagate/s3setup/internal/repository/manifest"
	"github.com/seagate/s3setup/internal/service/sdist"
)

const (
	archiveContentType  = "application/gzip"
	manifestContentType = "application/yaml"
)

var (
	errBucketRequired   = errors.New("s3 bucket must be provided")
	errAlreadyPublished = errors.New("release is already published")
)

// Options are inputs accepted by the publisher entry point.
type Options struct {
	// ManifestPath is the release manifest written by sdist.
	ManifestPath string
	// Config carries the bucket, prefix and client settings.
	Config *config.Config
	// Force overwrites a release that is already present.
	Force bool
	// Store overrides the S3 client; nil means one is built from Config.
	Store ObjectStore
}

// Result lists the uploaded object keys.
type Result struct {
	Bucket string
	Keys   []string
}

// publisher holds the state of a single publication.
type publisher struct {
	store    ObjectStore
	cfg      *config.Config
	manifest *release.Manifest
	dir      string
}

// Run executes the publication.
func Run(ctx context.Context, opts *Options) error {
	result, err := Publish(ctx, opts)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	for _, key := range result.Keys {
		logger.InfoKV(ctx, "Published", "url", "s3://"+result.Bucket+"/"+key)
	}

	return nil
}

// Publish uploads the archive and then the manifest referenced by opts.ManifestPath.
func Publish(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "publish")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.S3.Bucket == "" {
		return nil, errBucketRequired
	}

	repo := manifest.NewFileRepository(opts.ManifestPath)

	m, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err = sdist.VerifyArchive(filepath.Join(repo.Dir(), m.Archive.Name), m); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		if store, err = NewClient(ctx, cfg.S3); err != nil {
			return nil, err
		}
	}

	p := &publisher{
		store:    store,
		cfg:      cfg,
		manifest: m,
		dir:      repo.Dir(),
	}

	ctx = logger.WithKV(ctx, "dist", m.DistRoot(), "bucket", cfg.S3.Bucket)

	archiveKey := p.key(m.Archive.Name)
	manifestKey := p.key(filepath.Base(repo.Path()))

	if !opts.Force {
		if err = p.ensureAbsent(ctx, archiveKey); err != nil {
			return nil, err
		}
	}

	stop := startProgress("Uploading " + m.DistRoot())
	defer stop()

	// The manifest goes last so readers never see one without its archive.
	if err = p.upload(ctx, archiveKey, m.Archive.Name, archiveContentType); err != nil {
		return nil, err
	}

	if err = p.upload(ctx, manifestKey, filepath.Base(repo.Path()), manifestContentType); err != nil {
		return nil, err
	}

	return &Result{
		Bucket: cfg.S3.Bucket,
		Keys:   []string{archiveKey, manifestKey},
	}, nil
}

// key returns the object key for a release file.
func (p *publisher) key(fileName string) string {
	desc := p.manifest.Descriptor

	return path.Join(p.cfg.S3.Prefix, desc.Name, desc.SafeVersion(), fileName)
}

// ensureAbsent fails when the object already exists.
func (p *publisher) ensureAbsent(ctx context.Context, key string) error {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	_, err := p.store.HeadObject(callCtx, &s3.HeadObjectInput{
		Bucket: aws.String(p.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return fmt.Errorf("s3://%s/%s: %w", p.cfg.S3.Bucket, key, errAlreadyPublished)
	}

	if isNotFound(err) {
		return nil
	}

	return describeError("head "+key, err)
}

// upload puts one file from the manifest directory.
func (p *publisher) upload(ctx context.Context, key, fileName, contentType string) error {
	file, err := os.Open(filepath.Join(p.dir, fileName))
	if err != nil {
		return fmt.Errorf("open %s: %w", fileName, err)
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", fileName, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	logger.InfoKV(ctx, "Uploading file", "key", key, "size", info.Size())

	_, err = p.store.PutObject(callCtx, &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"build-id":       p.manifest.BuildID.String(),
			"version":        p.manifest.Descriptor.Version,
			"archive-sha512": p.manifest.Archive.Checksum,
		},
	})
	if err != nil {
		return describeError("put "+key, err)
	}

	return nil
}

// isNotFound reports whether err means the object does not exist.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

// describeError adds the service error code to failures coming from S3.
func describeError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s (%s): %w", operation, apiErr.ErrorCode(), apiErr.ErrorFault(), err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
