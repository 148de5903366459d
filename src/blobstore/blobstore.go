// Package blobstore is the persistence primitive underlying chunk storage:
// opaque byte blobs with attached key-value metadata, addressable by a
// store-generated id and discoverable by metadata equality filters.
package blobstore

import (
	"context"
	"errors"
	"time"
)

// Metadata keys written on every chunk blob.
const (
	MetaContentID       = "content_id"
	MetaChunkIndex      = "chunk_index"
	MetaTotalChunks     = "total_chunks"
	MetaTokenCount      = "token_count"
	MetaChunkTokenCount = "chunk_token_count"
	MetaCreatedAt       = "created_at"
)

// ErrBlobNotFound is returned by Get when no blob has the requested id.
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes a stored blob without its payload.
type BlobInfo struct {
	ID         string
	Filename   string
	Length     int64
	UploadDate time.Time
	Metadata   map[string]any
}

// BlobStore defines the contract for blob persistence backends.
//
// Implementations hold no mutable client state beyond a shared connection
// handle, so every method is safe to call concurrently. List makes no
// ordering promise; callers that need an order must sort the results.
type BlobStore interface {
	// Put persists one blob and returns its freshly generated id. A
	// created_at timestamp is added to the metadata when absent.
	Put(ctx context.Context, content []byte, filename string, metadata map[string]any) (string, error)

	// Get returns the raw blob content. It wraps ErrBlobNotFound when the
	// blob does not exist; there is no silent fallback.
	Get(ctx context.Context, blobID string) ([]byte, error)

	// List returns the metadata records matching an equality filter over
	// metadata fields, without fetching content bodies.
	List(ctx context.Context, filter map[string]any) ([]BlobInfo, error)

	// Delete removes a blob, reporting false (not an error) when it does
	// not exist.
	Delete(ctx context.Context, blobID string) (bool, error)
}
