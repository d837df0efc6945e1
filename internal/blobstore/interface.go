package blobstore

import (
	"context"
	"io"
)

// BlobStore is the byte-storage abstraction used by JobService. Objects
// are stored under a caller-chosen name; Put returns the opaque locator
// used for all later access. Every locator is owned by exactly one job
// record and the two are always created and destroyed together.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
	Delete(ctx context.Context, locator string) error
}
