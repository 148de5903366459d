package blobstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("payload"), "doc.txt", map[string]any{MetaContentID: "c1"})
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	content, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(content) != "payload" {
		t.Fatalf("Get = %q, want %q", content, "payload")
	}
}

func TestMemoryStorePutAddsCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Put(ctx, []byte("x"), "doc.txt", nil); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	infos, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(infos))
	}
	if TimeFromAny(infos[0].Metadata[MetaCreatedAt]).IsZero() {
		t.Fatalf("expected an auto-added creation timestamp")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "no-such-blob")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestMemoryStoreListFiltersByMetadata(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Put(ctx, []byte("a"), "a.txt", map[string]any{MetaContentID: "c1", MetaChunkIndex: 0}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := store.Put(ctx, []byte("b"), "b.txt", map[string]any{MetaContentID: "c1", MetaChunkIndex: 1}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := store.Put(ctx, []byte("c"), "c.txt", map[string]any{MetaContentID: "c2", MetaChunkIndex: 0}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	infos, err := store.List(ctx, map[string]any{MetaContentID: "c1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 blobs for c1, got %d", len(infos))
	}

	// Numeric filters match across the widths serialization produces.
	infos, err = store.List(ctx, map[string]any{MetaContentID: "c1", MetaChunkIndex: int64(1)})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(infos) != 1 || infos[0].Filename != "b.txt" {
		t.Fatalf("expected exactly b.txt, got %+v", infos)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("x"), "doc.txt", nil)
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	ok, err := store.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Delete of an existing blob = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = store.Delete(ctx, id)
	if err != nil || ok {
		t.Fatalf("Delete of a missing blob = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestIntFromAnyWidths(t *testing.T) {
	for _, v := range []any{int(7), int32(7), int64(7), float64(7)} {
		if got := IntFromAny(v); got != 7 {
			t.Fatalf("IntFromAny(%T) = %d, want 7", v, got)
		}
	}
	if got := IntFromAny("7"); got != 0 {
		t.Fatalf("IntFromAny(string) = %d, want 0", got)
	}
}
