package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config describes an S3-compatible object store endpoint.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Store stores blob bytes in an S3-compatible bucket. The locator is
// the object key inside the configured bucket.
type S3Store struct {
	cl     *minio.Client
	bucket string
}

// NewS3Store creates an S3-backed blob store.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &S3Store{cl: cl, bucket: cfg.Bucket}, nil
}

// Put uploads the object under name and returns name as the locator.
func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if s == nil || s.cl == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	if !objectNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid object name")
	}
	_, err := s.cl.PutObject(ctx, s.bucket, name, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// Open returns a reader for the object at locator.
func (s *S3Store) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if s == nil || s.cl == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("blob locator is required")
	}
	obj, err := s.cl.GetObject(ctx, s.bucket, locator, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; a missing key surfaces on first read. Stat here
	// so callers get the error where they expect it.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// Delete removes the object at locator. Missing objects are not an error.
func (s *S3Store) Delete(ctx context.Context, locator string) error {
	if s == nil || s.cl == nil {
		return fmt.Errorf("blob store is not configured")
	}
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return fmt.Errorf("blob locator is required")
	}
	return s.cl.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{})
}
