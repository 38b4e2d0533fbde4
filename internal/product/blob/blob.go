// Package blob stores product images as opaque objects under caller-chosen keys.
package blob

import "context"

// BlobStore is the object storage used for product images.
type BlobStore interface {
	// Put writes data under key and returns the public locator of the object.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object stored under key.
	// Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
