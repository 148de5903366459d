// Package docstore stores arbitrarily large text documents in a blob store
// that enforces a hard per-record size ceiling, by splitting content into
// ordered token-bounded chunks and reassembling them on read.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docmesh/chunkstore/src/blobstore"
	"github.com/docmesh/chunkstore/src/chunker"
	"github.com/docmesh/chunkstore/src/sizeguard"
	"github.com/docmesh/chunkstore/src/tokenizer"
)

// ChunkedFileDescriptor is the immutable result of one Store call. Later
// retrievals reconstruct from the blob store's own records, never from a
// cached descriptor.
type ChunkedFileDescriptor struct {
	ContentID  string
	FileIDs    []string
	IsChunked  bool
	ChunkCount int
	TokenCount int
	TotalSize  int
}

// DocumentStore composes the tokenizer, chunker, safety gate, and blob
// store. The blob store handle is injected; its lifecycle (connect/close)
// belongs to the caller.
type DocumentStore struct {
	blobs        blobstore.BlobStore
	tok          tokenizer.Tokenizer
	limits       sizeguard.Limits
	batchWorkers int
}

// Option configures a DocumentStore during construction.
type Option func(*DocumentStore) error

// WithTokenizer sets the tokenizer used for counting and chunking.
func WithTokenizer(tok tokenizer.Tokenizer) Option {
	return func(ds *DocumentStore) error {
		if tok == nil {
			return errors.New("tokenizer must not be nil")
		}
		ds.tok = tok
		return nil
	}
}

// WithEncoding resolves the named encoding as the store's tokenizer.
func WithEncoding(name string) Option {
	return func(ds *DocumentStore) error {
		ds.tok = tokenizer.Resolve(name)
		return nil
	}
}

// WithLimits overrides the size policy.
func WithLimits(limits sizeguard.Limits) Option {
	return func(ds *DocumentStore) error {
		if err := limits.Validate(); err != nil {
			return err
		}
		ds.limits = limits
		return nil
	}
}

// WithBatchWorkers bounds StoreBatch concurrency.
func WithBatchWorkers(n int) Option {
	return func(ds *DocumentStore) error {
		if n <= 0 {
			return fmt.Errorf("batch workers must be positive, got %d", n)
		}
		ds.batchWorkers = n
		return nil
	}
}

// New builds a DocumentStore over the given blob store. Without options it
// resolves the default encoding and uses the default size limits.
func New(blobs blobstore.BlobStore, opts ...Option) (*DocumentStore, error) {
	if blobs == nil {
		return nil, errors.New("a blob store is required")
	}
	ds := &DocumentStore{
		blobs:  blobs,
		limits: sizeguard.DefaultLimits(),
	}
	for _, opt := range opts {
		if err := opt(ds); err != nil {
			return nil, err
		}
	}
	if ds.tok == nil {
		ds.tok = tokenizer.Resolve(tokenizer.DefaultEncoding)
	}
	return ds, nil
}

// Limits returns the store's size policy.
func (ds *DocumentStore) Limits() sizeguard.Limits { return ds.limits }

// Store persists content as one or more token-bounded chunks and returns
// the descriptor for the stored document. A tokenLimit of zero or less
// uses the configured default.
//
// The safety gate runs before anything touches the blob store: oversized
// content comes back as a *SizeLimitError with no write attempted. A write
// failure partway through a multi-chunk store deletes the chunks already
// written (best effort) and surfaces a *StoreError.
func (ds *DocumentStore) Store(ctx context.Context, content, filename string, metadata map[string]any, tokenLimit int) (*ChunkedFileDescriptor, error) {
	if tokenLimit <= 0 {
		tokenLimit = ds.limits.ChunkTokenLimit
	}

	tokenCount := tokenizer.Count(content, ds.tok)
	if ok, msg := ds.limits.CheckTokenCount(tokenCount); !ok {
		log.Printf("[DocStore] rejected %q: %s", filename, msg)
		return nil, &SizeLimitError{TokenCount: tokenCount, MaxSafeTokens: ds.limits.MaxSafeTokenCount}
	}

	contentID := uuid.NewString()
	pieces := chunker.Split(content, tokenLimit, ds.tok)
	total := len(pieces)
	if total > 1 {
		log.Printf("[DocStore] storing %q as %d chunks (%d tokens, limit %d)", filename, total, tokenCount, tokenLimit)
	}

	fileIDs := make([]string, 0, total)
	for i, piece := range pieces {
		meta := blobstore.CloneMetadata(metadata)
		meta[blobstore.MetaContentID] = contentID
		meta[blobstore.MetaChunkIndex] = i
		meta[blobstore.MetaTotalChunks] = total
		// The overall count rides on every chunk so TokenCount can answer
		// from any one List record.
		meta[blobstore.MetaTokenCount] = tokenCount
		meta[blobstore.MetaChunkTokenCount] = piece.TokenCount

		blobID, err := ds.blobs.Put(ctx, []byte(piece.Text), filename, meta)
		if err != nil {
			ds.cleanup(ctx, contentID, fileIDs)
			return nil, &StoreError{Cause: err}
		}
		fileIDs = append(fileIDs, blobID)
	}

	return &ChunkedFileDescriptor{
		ContentID:  contentID,
		FileIDs:    fileIDs,
		IsChunked:  total > 1,
		ChunkCount: total,
		TokenCount: tokenCount,
		TotalSize:  len(content),
	}, nil
}

// cleanup removes chunks left behind by a failed multi-chunk store, so a
// write failure cannot strand unreferenced blobs.
func (ds *DocumentStore) cleanup(ctx context.Context, contentID string, blobIDs []string) {
	if len(blobIDs) == 0 {
		return
	}
	log.Printf("[DocStore] removing %d partially written chunks for content id %s", len(blobIDs), contentID)
	for _, id := range blobIDs {
		if _, err := ds.blobs.Delete(ctx, id); err != nil {
			log.Printf("[DocStore] cleanup of blob %s failed: %v", id, err)
		}
	}
}

// Retrieve reassembles the document stored under contentID. An unknown id
// comes back as a *NotFoundError; content stored with an exact tokenizer
// is returned byte-for-byte identical to the original input.
func (ds *DocumentStore) Retrieve(ctx context.Context, contentID string) (string, error) {
	infos, err := ds.chunkSet(ctx, contentID)
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", &NotFoundError{ContentID: contentID}
	}

	// List promises no order; the chunk index does.
	sort.Slice(infos, func(i, j int) bool {
		return chunkIndex(infos[i]) < chunkIndex(infos[j])
	})

	var builder strings.Builder
	for _, info := range infos {
		raw, err := ds.blobs.Get(ctx, info.ID)
		if err != nil {
			return "", fmt.Errorf("fetch chunk blob %s of content %s: %w", info.ID, contentID, err)
		}
		if !utf8.Valid(raw) {
			return "", &DecodeError{ContentID: contentID, BlobID: info.ID, ChunkIndex: chunkIndex(info)}
		}
		builder.Write(raw)
	}
	return builder.String(), nil
}

// TokenCount returns the overall token count recorded for contentID, or
// zero when nothing is stored under it. Every chunk carries the same
// value, so any one record answers.
func (ds *DocumentStore) TokenCount(ctx context.Context, contentID string) (int, error) {
	infos, err := ds.chunkSet(ctx, contentID)
	if err != nil {
		return 0, err
	}
	if len(infos) == 0 {
		return 0, nil
	}
	return blobstore.IntFromAny(infos[0].Metadata[blobstore.MetaTokenCount]), nil
}

// Delete removes every chunk stored under contentID and reports how many
// blobs were removed.
func (ds *DocumentStore) Delete(ctx context.Context, contentID string) (int, error) {
	infos, err := ds.chunkSet(ctx, contentID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, info := range infos {
		ok, err := ds.blobs.Delete(ctx, info.ID)
		if err != nil {
			return removed, fmt.Errorf("delete chunk blob %s of content %s: %w", info.ID, contentID, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

func (ds *DocumentStore) chunkSet(ctx context.Context, contentID string) ([]blobstore.BlobInfo, error) {
	infos, err := ds.blobs.List(ctx, map[string]any{blobstore.MetaContentID: contentID})
	if err != nil {
		return nil, fmt.Errorf("list chunks for content %s: %w", contentID, err)
	}
	return infos, nil
}

func chunkIndex(info blobstore.BlobInfo) int {
	return blobstore.IntFromAny(info.Metadata[blobstore.MetaChunkIndex])
}
