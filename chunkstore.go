// Package chunkstore persists arbitrarily large text documents in stores
// with a hard per-record size ceiling by splitting them into ordered,
// token-bounded chunks, and reassembles them transparently on read.
//
// The implementation lives in the src packages; this package re-exports
// the public surface so most callers need a single import.
package chunkstore

import (
	"github.com/docmesh/chunkstore/src/blobstore"
	"github.com/docmesh/chunkstore/src/chunker"
	"github.com/docmesh/chunkstore/src/docstore"
	"github.com/docmesh/chunkstore/src/sizeguard"
	"github.com/docmesh/chunkstore/src/tokenizer"
)

type (
	Tokenizer   = tokenizer.Tokenizer
	Codec       = tokenizer.Codec
	Approximate = tokenizer.Approximate

	Piece = chunker.Piece

	Limits = sizeguard.Limits
	Check  = sizeguard.Check

	BlobStore     = blobstore.BlobStore
	BlobInfo      = blobstore.BlobInfo
	GridFSStore   = blobstore.GridFSStore
	PostgresStore = blobstore.PostgresStore
	MemoryStore   = blobstore.MemoryStore

	DocumentStore         = docstore.DocumentStore
	Option                = docstore.Option
	ChunkedFileDescriptor = docstore.ChunkedFileDescriptor
	BatchItem             = docstore.BatchItem
	BatchResult           = docstore.BatchResult

	SizeLimitError = docstore.SizeLimitError
	StoreError     = docstore.StoreError
	NotFoundError  = docstore.NotFoundError
	DecodeError    = docstore.DecodeError
)

var (
	NewDocumentStore = docstore.New
	WithTokenizer    = docstore.WithTokenizer
	WithEncoding     = docstore.WithEncoding
	WithLimits       = docstore.WithLimits
	WithBatchWorkers = docstore.WithBatchWorkers

	NewGridFSStore   = blobstore.NewGridFSStore
	NewPostgresStore = blobstore.NewPostgresStore
	NewMemoryStore   = blobstore.NewMemoryStore

	ResolveTokenizer = tokenizer.Resolve
	CountTokens      = tokenizer.Count
	ChunkText        = chunker.Chunk
	SplitText        = chunker.Split
	DefaultLimits    = sizeguard.DefaultLimits
)

const (
	DefaultEncoding      = tokenizer.DefaultEncoding
	DefaultBytesPerToken = tokenizer.DefaultBytesPerToken
	DefaultTokenLimit    = chunker.DefaultTokenLimit
	MaxSafeTokenCount    = sizeguard.DefaultMaxSafeTokenCount
	AbsoluteDocSizeBytes = sizeguard.AbsoluteDocSizeBytes
)

// ErrBlobNotFound is re-exported for callers matching blob-level misses.
var ErrBlobNotFound = blobstore.ErrBlobNotFound
