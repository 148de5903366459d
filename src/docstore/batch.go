package docstore

import (
	"context"

	"github.com/docmesh/chunkstore/src/concurrent"
)

// BatchItem is one document in a batch store request.
type BatchItem struct {
	Content  string
	Filename string
	Metadata map[string]any
}

// BatchResult pairs a batch item with its outcome. Exactly one of
// Descriptor and Err is set.
type BatchResult struct {
	Filename   string
	Descriptor *ChunkedFileDescriptor
	Err        error
}

// StoreBatch stores many documents through a bounded worker pool. Each
// document gets its own content id, so the writes are independent and the
// per-item outcomes are returned in input order; one rejection or failure
// does not stop the rest.
func (ds *DocumentStore) StoreBatch(ctx context.Context, items []BatchItem, tokenLimit int) []BatchResult {
	results, err := concurrent.ParallelMap(ctx, items, func(item BatchItem) (BatchResult, error) {
		desc, storeErr := ds.Store(ctx, item.Content, item.Filename, item.Metadata, tokenLimit)
		return BatchResult{Filename: item.Filename, Descriptor: desc, Err: storeErr}, nil
	}, ds.batchWorkers)
	if err != nil {
		// Context cancellation leaves unprocessed slots zero-valued; mark
		// them so no item reads as silently succeeded.
		for i := range results {
			if results[i].Descriptor == nil && results[i].Err == nil {
				results[i] = BatchResult{Filename: items[i].Filename, Err: err}
			}
		}
	}
	return results
}
