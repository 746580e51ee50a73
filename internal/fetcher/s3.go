package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// S3Options configures the S3-compatible fetcher.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Fetcher downloads s3://bucket/key documents from MinIO or any
// S3-compatible store.
type S3Fetcher struct {
	client *minio.Client
}

// NewS3Fetcher connects a MinIO client to the configured endpoint.
func NewS3Fetcher(opts S3Options) (*S3Fetcher, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, eris.New("fetcher: s3 endpoint, access key and secret key are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create minio client")
	}

	zap.L().Debug("fetcher: s3 client ready", zap.String("endpoint", opts.Endpoint))
	return &S3Fetcher{client: client}, nil
}

// ParseS3Location splits an s3://bucket/key reference.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", eris.Wrapf(err, "fetcher: parse s3 location %q", location)
	}
	if u.Scheme != "s3" {
		return "", "", eris.Errorf("fetcher: not an s3 location %q", location)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", eris.Errorf("fetcher: s3 location %q needs bucket and key", location)
	}
	return bucket, key, nil
}

// Download implements Fetcher.
func (f *S3Fetcher) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}

	object, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get object %s/%s", bucket, key)
	}
	// GetObject is lazy; Stat surfaces NoSuchKey before the caller starts decoding.
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, eris.Wrapf(err, "fetcher: stat object %s/%s", bucket, key)
	}
	return object, nil
}
