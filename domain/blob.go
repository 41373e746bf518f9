package domain

import "context"

// UploadedFile describes an object already uploaded to the blob store by the
// file intake in front of the API.
type UploadedFile struct {
	Key  string // object key in the bucket
	Path string // public URL of the object
	Name string // original file name
}

// BlobStore removes binary assets from object storage.
type BlobStore interface {
	// DeleteObjects removes the objects with the given keys. Missing keys are
	// not an error. An empty key list is a no-op.
	DeleteObjects(ctx context.Context, keys []string) error
}
