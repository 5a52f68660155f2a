// Package api defines the Files API client surface the transfer core is
// written against, together with its wire DTOs. The concrete HTTP
// implementation lives in the rest subpackage; tests substitute fakes.
package api

import "context"

// ProgressFunc reports transport progress in bytes. Implementations of
// Client call it zero or more times during an upload or download; loaded is
// monotonically non-decreasing and total may be zero when unknown.
type ProgressFunc func(loaded, total int64)

// Client is the REST surface consumed by the transfer core. Every call takes
// a context; cancelling it must abort the underlying request.
type Client interface {
	// ListBuckets returns every bucket visible to the authenticated user.
	ListBuckets(ctx context.Context) ([]Bucket, error)

	// GetBucketUsers returns the principal lists of one bucket.
	GetBucketUsers(ctx context.Context, bucketID string) (BucketUsers, error)

	// CreateBucket creates a bucket. Only principal-wrapped key material is
	// ever carried in the request.
	CreateBucket(ctx context.Context, req CreateBucketRequest) (Bucket, error)

	// UpdateBucket replaces a bucket's name and principal lists.
	UpdateBucket(ctx context.Context, bucketID string, req UpdateBucketRequest) error

	// ListObjects lists the direct children of a path within a bucket.
	ListObjects(ctx context.Context, bucketID, path string) ([]FileContentResponse, error)

	// GetObjectContent fetches the raw (possibly encrypted) bytes of one
	// object, reporting download progress.
	GetObjectContent(ctx context.Context, bucketID, path string, onProgress ProgressFunc) ([]byte, error)

	// UploadObjects submits a batch of objects to one path as a single
	// multipart request, reporting upload progress for the whole batch.
	UploadObjects(ctx context.Context, bucketID string, objects []UploadObject, path string, onProgress ProgressFunc) error

	// MoveObjects renames or moves objects, optionally across buckets via
	// the Destination field.
	MoveObjects(ctx context.Context, bucketID string, req MoveObjectsRequest) error

	// RemoveObjects deletes objects outright.
	RemoveObjects(ctx context.Context, bucketID string, paths []string) error

	// BucketsSummary returns account-wide storage usage.
	BucketsSummary(ctx context.Context) (BucketSummary, error)
}
