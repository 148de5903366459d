package blobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements BlobStore for tests and lightweight deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	info    BlobInfo
	content []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (ms *MemoryStore) Put(_ context.Context, content []byte, filename string, metadata map[string]any) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now().UTC()
	id := uuid.NewString()
	ms.blobs[id] = memoryBlob{
		info: BlobInfo{
			ID:         id,
			Filename:   filename,
			Length:     int64(len(content)),
			UploadDate: now,
			Metadata:   EnsureCreatedAt(CloneMetadata(metadata), now),
		},
		content: append([]byte(nil), content...),
	}
	return id, nil
}

func (ms *MemoryStore) Get(_ context.Context, blobID string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	blob, ok := ms.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	}
	return append([]byte(nil), blob.content...), nil
}

func (ms *MemoryStore) List(_ context.Context, filter map[string]any) ([]BlobInfo, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var infos []BlobInfo
	for _, blob := range ms.blobs {
		if MatchesFilter(blob.info.Metadata, filter) {
			infos = append(infos, blob.info)
		}
	}
	// Stable output for callers; the BlobStore contract itself promises
	// no order.
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].UploadDate.Equal(infos[j].UploadDate) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].UploadDate.Before(infos[j].UploadDate)
	})
	return infos, nil
}

func (ms *MemoryStore) Delete(_ context.Context, blobID string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.blobs[blobID]; !ok {
		return false, nil
	}
	delete(ms.blobs, blobID)
	return true, nil
}

// Len reports how many blobs are held. Test helper.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.blobs)
}
