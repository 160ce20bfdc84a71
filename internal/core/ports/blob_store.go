package ports

import (
	"context"
	"io"
)

// BlobStore stores uploaded files and hands back stable public URLs.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object behind url. Unknown objects are not an error.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points into this store.
	Owns(url string) bool
}
