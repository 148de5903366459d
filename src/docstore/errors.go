package docstore

import "fmt"

// SizeLimitError reports content rejected by the safety ceiling. It is
// raised before any blob is written, so the caller can summarize or
// truncate and retry.
type SizeLimitError struct {
	TokenCount    int
	MaxSafeTokens int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("content of %d tokens exceeds the maximum safe limit of %d", e.TokenCount, e.MaxSafeTokens)
}

// StoreError wraps a blob store failure during a write. Writes are not
// retried internally; retry policy belongs to the caller.
type StoreError struct {
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to store file: %v", e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// NotFoundError reports that a content id has no stored chunks.
type NotFoundError struct {
	ContentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no stored content found for content id %s", e.ContentID)
}

// DecodeError reports chunk bytes that are not valid UTF-8. There is no
// safe substitution for corrupt text, so this propagates to the caller.
type DecodeError struct {
	ContentID  string
	BlobID     string
	ChunkIndex int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chunk %d of content %s (blob %s) is not valid UTF-8", e.ChunkIndex, e.ContentID, e.BlobID)
}
