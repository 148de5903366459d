// Command chunkstore stores, retrieves, and inspects token-chunked
// documents against a live backend.
//
// Examples:
//
//	export MONGO_URI=mongodb://localhost:27017
//	chunkstore -op store -db docs notes.md
//	chunkstore -op retrieve -db docs -content-id 4f1c...
//	chunkstore -op tokens -db docs -content-id 4f1c...
//	chunkstore -op validate notes.md
//
//	export DATABASE_URL=postgres://localhost/docs
//	chunkstore -backend postgres -op store notes.md
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docmesh/chunkstore/src/blobstore"
	"github.com/docmesh/chunkstore/src/docstore"
	"github.com/docmesh/chunkstore/src/sizeguard"
)

var (
	flagBackend   = flag.String("backend", "mongo", "Blob store backend: mongo|postgres")
	flagURI       = flag.String("uri", "", "Connection string (defaults to MONGO_URI or DATABASE_URL)")
	flagDB        = flag.String("db", "chunkstore", "Database name (mongo backend)")
	flagOp        = flag.String("op", "store", "Operation: store|retrieve|tokens|validate|delete")
	flagEncoding  = flag.String("encoding", "", "Tokenizer encoding name (default o200k_base)")
	flagContentID = flag.String("content-id", "", "Content id for retrieve/tokens/delete")
	flagLimit     = flag.Int("token-limit", 0, "Per-chunk token limit (0 = default)")
	flagMaxSafe   = flag.Int("max-safe-tokens", 0, "Absolute token ceiling (0 = default)")
	flagTimeout   = flag.Duration("timeout", 2*time.Minute, "Operation timeout")
	flagBootstrap = flag.Bool("bootstrap", false, "Create indexes/schema before running")
)

type report struct {
	Op         string   `json:"op"`
	ContentID  string   `json:"content_id,omitempty"`
	FileIDs    []string `json:"file_ids,omitempty"`
	IsChunked  bool     `json:"is_chunked,omitempty"`
	ChunkCount int      `json:"chunk_count,omitempty"`
	TokenCount int      `json:"token_count,omitempty"`
	TotalSize  int      `json:"total_size,omitempty"`
	Removed    int      `json:"removed,omitempty"`
	Valid      *bool    `json:"valid,omitempty"`
	Message    string   `json:"message,omitempty"`
}

func main() {
	flag.Parse()
	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	limits := sizeguard.DefaultLimits()
	if *flagMaxSafe > 0 {
		limits.MaxSafeTokenCount = *flagMaxSafe
	}

	// Validation never touches a backend.
	if *flagOp == "validate" {
		path := flag.Arg(0)
		if path == "" {
			log.Fatal("validate needs a file argument")
		}
		ok, msg := limits.CheckFile(path)
		emit(report{Op: "validate", Valid: &ok, Message: msg})
		return
	}

	store, closeStore, err := openBlobStore(ctx)
	if err != nil {
		log.Fatalf("open %s backend: %v", *flagBackend, err)
	}
	defer closeStore()

	opts := []docstore.Option{docstore.WithLimits(limits)}
	if *flagEncoding != "" {
		opts = append(opts, docstore.WithEncoding(*flagEncoding))
	}
	docs, err := docstore.New(store, opts...)
	if err != nil {
		log.Fatalf("build document store: %v", err)
	}

	switch *flagOp {
	case "store":
		path := flag.Arg(0)
		if path == "" {
			log.Fatal("store needs a file argument")
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		desc, err := docs.Store(ctx, string(content), path, nil, *flagLimit)
		if err != nil {
			log.Fatalf("store %s: %v", path, err)
		}
		emit(report{
			Op:         "store",
			ContentID:  desc.ContentID,
			FileIDs:    desc.FileIDs,
			IsChunked:  desc.IsChunked,
			ChunkCount: desc.ChunkCount,
			TokenCount: desc.TokenCount,
			TotalSize:  desc.TotalSize,
		})
	case "retrieve":
		requireContentID()
		content, err := docs.Retrieve(ctx, *flagContentID)
		if err != nil {
			log.Fatalf("retrieve %s: %v", *flagContentID, err)
		}
		fmt.Print(content)
	case "tokens":
		requireContentID()
		count, err := docs.TokenCount(ctx, *flagContentID)
		if err != nil {
			log.Fatalf("token count of %s: %v", *flagContentID, err)
		}
		emit(report{Op: "tokens", ContentID: *flagContentID, TokenCount: count})
	case "delete":
		requireContentID()
		removed, err := docs.Delete(ctx, *flagContentID)
		if err != nil {
			log.Fatalf("delete %s: %v", *flagContentID, err)
		}
		emit(report{Op: "delete", ContentID: *flagContentID, Removed: removed})
	default:
		log.Fatalf("unknown op %q", *flagOp)
	}
}

func openBlobStore(ctx context.Context) (blobstore.BlobStore, func(), error) {
	switch *flagBackend {
	case "mongo":
		uri := *flagURI
		if uri == "" {
			uri = os.Getenv("MONGO_URI")
		}
		store, err := blobstore.NewGridFSStore(ctx, uri, *flagDB)
		if err != nil {
			return nil, nil, err
		}
		if *flagBootstrap {
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = store.Close()
				return nil, nil, err
			}
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		uri := *flagURI
		if uri == "" {
			uri = os.Getenv("DATABASE_URL")
		}
		store, err := blobstore.NewPostgresStore(ctx, uri)
		if err != nil {
			return nil, nil, err
		}
		if *flagBootstrap {
			if err := store.CreateSchema(ctx, ""); err != nil {
				_ = store.Close()
				return nil, nil, err
			}
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", *flagBackend)
	}
}

func requireContentID() {
	if *flagContentID == "" {
		log.Fatalf("%s needs -content-id", *flagOp)
	}
}

func emit(r report) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	fmt.Println(string(out))
}
