package driven

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Get when nothing is stored under a key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore defines the driven port for the key-value persistence substrate.
// Values are opaque byte blobs; callers store whole JSON documents and rewrite
// them in full on every mutation.
type BlobStore interface {
	// Get returns the value stored under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores or replaces the value under key.
	Put(ctx context.Context, key string, value []byte) error
}
