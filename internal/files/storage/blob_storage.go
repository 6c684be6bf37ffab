// Package storage provides the attachment byte store on top of gocloud.dev
// blob buckets. The store holds opaque bytes only; encryption happens in the
// use case layer before anything reaches a bucket.
package storage

import (
	"context"

	"gocloud.dev/blob"

	// Register bucket drivers
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	apperrors "github.com/familyvault/vault/internal/errors"
)

// BlobStorage stores attachment bytes under string keys.
type BlobStorage struct {
	bucket *blob.Bucket
}

// NewBlobStorage opens the bucket identified by a gocloud.dev URL
// (s3://, file://, mem://).
func NewBlobStorage(ctx context.Context, bucketURL string) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open blob bucket")
	}
	return &BlobStorage{bucket: bucket}, nil
}

// NewBlobStorageFromBucket wraps an already open bucket. Used by tests with
// in-memory buckets.
func NewBlobStorageFromBucket(bucket *blob.Bucket) *BlobStorage {
	return &BlobStorage{bucket: bucket}
}

// Upload writes data under the given key, overwriting any existing object.
func (s *BlobStorage) Upload(ctx context.Context, key string, data []byte) error {
	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return apperrors.Wrap(err, "failed to upload blob")
	}
	return nil
}

// Download reads the object stored under the given key.
func (s *BlobStorage) Download(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to download blob")
	}
	return data, nil
}

// Delete removes the object stored under the given key.
func (s *BlobStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		return apperrors.Wrap(err, "failed to delete blob")
	}
	return nil
}

// Close releases the underlying bucket.
func (s *BlobStorage) Close() error {
	return s.bucket.Close()
}
