package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection settings of an S3 compatible endpoint,
// such as Cloudflare R2.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
}

// Validate reports the first missing connection setting.
func (c S3Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("storage: missing endpoint")
	case c.AccessKey == "" || c.SecretKey == "":
		return errors.New("storage: missing credentials")
	case c.Bucket == "":
		return errors.New("storage: missing bucket name")
	}
	return nil
}

// S3Bucket uploads objects to an S3 compatible bucket.
type S3Bucket struct {
	client *minio.Client
	bucket string
}

// NewS3Bucket connects to the configured endpoint. The endpoint may be given
// with or without scheme; plain host names use TLS.
func NewS3Bucket(cfg S3Config) (*S3Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: unable to create client: %w", err)
	}
	return &S3Bucket{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the payload, overwriting any existing object.
func (b *S3Bucket) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func splitEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("storage: invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("storage: invalid endpoint %q", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}
