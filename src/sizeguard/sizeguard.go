// Package sizeguard rejects content whose token count exceeds the absolute
// safety ceiling, before any storage attempt is made.
package sizeguard

import (
	"fmt"
	"os"

	"github.com/docmesh/chunkstore/src/tokenizer"
)

const (
	// DefaultMaxSafeTokenCount is the absolute token ceiling. At four bytes
	// per token this keeps a worst-case single document near the 16 MiB
	// record limit of the backing database.
	DefaultMaxSafeTokenCount = 4_000_000

	// DefaultChunkTokenLimit is the per-chunk budget handed to the chunker
	// when a caller does not pick one. Independent of the ceiling above and
	// normally far smaller.
	DefaultChunkTokenLimit = 50_000

	// AbsoluteDocSizeBytes is the hard per-record byte limit this whole
	// subsystem exists to respect. Informational; the enforced policy is
	// expressed in tokens.
	AbsoluteDocSizeBytes = 16 * 1024 * 1024
)

// Limits holds the process-wide size policy.
type Limits struct {
	MaxSafeTokenCount int
	ChunkTokenLimit   int
	BytesPerToken     int
	DocSizeBytes      int
}

// DefaultLimits returns the standard policy.
func DefaultLimits() Limits {
	return Limits{
		MaxSafeTokenCount: DefaultMaxSafeTokenCount,
		ChunkTokenLimit:   DefaultChunkTokenLimit,
		BytesPerToken:     tokenizer.DefaultBytesPerToken,
		DocSizeBytes:      AbsoluteDocSizeBytes,
	}
}

// Validate reports whether the limits are self-consistent: a full chunk,
// estimated in bytes, must stay under the per-record byte ceiling.
func (l Limits) Validate() error {
	if l.MaxSafeTokenCount <= 0 {
		return fmt.Errorf("max safe token count must be positive, got %d", l.MaxSafeTokenCount)
	}
	if l.ChunkTokenLimit <= 0 {
		return fmt.Errorf("chunk token limit must be positive, got %d", l.ChunkTokenLimit)
	}
	if l.BytesPerToken <= 0 {
		return fmt.Errorf("bytes per token must be positive, got %d", l.BytesPerToken)
	}
	if l.DocSizeBytes > 0 && l.ChunkTokenLimit*l.BytesPerToken >= l.DocSizeBytes {
		return fmt.Errorf("chunk token limit %d at %d bytes/token does not fit the %d byte document ceiling",
			l.ChunkTokenLimit, l.BytesPerToken, l.DocSizeBytes)
	}
	return nil
}

// Check names at most one source for the token count to validate, resolved
// in precedence order: an explicit TokenCount, then a file's byte size, then
// exact counting of Content.
type Check struct {
	TokenCount *int
	FilePath   string
	Content    string

	// Tokenizer counts Content when that path is taken. Nil falls back to
	// the byte-ratio approximation.
	Tokenizer tokenizer.Tokenizer
}

// CheckTokenCount validates an already-resolved token count against the
// ceiling. The message always carries both the count and the ceiling.
func (l Limits) CheckTokenCount(count int) (bool, string) {
	if count > l.MaxSafeTokenCount {
		return false, fmt.Sprintf("token count %d exceeds the maximum safe limit of %d", count, l.MaxSafeTokenCount)
	}
	return true, fmt.Sprintf("token count %d is within the maximum safe limit of %d", count, l.MaxSafeTokenCount)
}

// CheckFile validates a file by byte-size estimation only. The file's
// contents are never read; this is the deliberately cheap precheck for
// files too large to load just to inspect.
func (l Limits) CheckFile(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("cannot stat %s: %v", path, err)
	}
	bpt := l.BytesPerToken
	if bpt <= 0 {
		bpt = tokenizer.DefaultBytesPerToken
	}
	estimate := int(info.Size()) / bpt
	ok, msg := l.CheckTokenCount(estimate)
	return ok, "estimated " + msg
}

// CheckContent validates in-memory content by exact token counting.
func (l Limits) CheckContent(content string, tok tokenizer.Tokenizer) (bool, string) {
	return l.CheckTokenCount(tokenizer.Count(content, tok))
}

// Run resolves the check per the documented precedence and validates it.
func (l Limits) Run(check Check) (bool, string) {
	switch {
	case check.TokenCount != nil:
		return l.CheckTokenCount(*check.TokenCount)
	case check.FilePath != "":
		return l.CheckFile(check.FilePath)
	default:
		return l.CheckContent(check.Content, check.Tokenizer)
	}
}
