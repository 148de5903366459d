// Package chunker splits text into ordered pieces that each fit a token
// budget, so arbitrarily large documents can be persisted under a hard
// per-record size ceiling and reassembled losslessly.
package chunker

import (
	"github.com/docmesh/chunkstore/src/tokenizer"
)

// DefaultTokenLimit is the per-chunk token budget used when none is given.
// At four bytes per token a full chunk stays around 200 KB, far under the
// 16 MiB document ceiling the chunks exist to respect.
const DefaultTokenLimit = 50000

// Piece is one token-bounded slice of a document.
type Piece struct {
	Text       string
	TokenCount int
}

// Split partitions text into contiguous pieces of at most tokenLimit tokens.
//
// With an exact tokenizer the text is encoded once and cut into token
// windows, each decoded independently; every source token lands in exactly
// one piece, in order, which is what makes reassembly lossless. Without one,
// the text is cut into rune windows of tokenLimit*bytesPerToken.
//
// Text that already fits the limit is returned unchanged as a single piece,
// with no decode round trip that could introduce tokenizer artifacts. Empty
// input yields no pieces.
func Split(text string, tokenLimit int, tok tokenizer.Tokenizer) []Piece {
	if text == "" {
		return nil
	}
	if tokenLimit <= 0 {
		tokenLimit = DefaultTokenLimit
	}
	if codec, ok := tok.(tokenizer.Codec); ok {
		return splitExact(text, tokenLimit, codec)
	}
	return splitApprox(text, tokenLimit, bytesPerToken(tok))
}

// Chunk is Split reduced to the piece texts.
func Chunk(text string, tokenLimit int, tok tokenizer.Tokenizer) []string {
	pieces := Split(text, tokenLimit, tok)
	if pieces == nil {
		return nil
	}
	chunks := make([]string, len(pieces))
	for i, piece := range pieces {
		chunks[i] = piece.Text
	}
	return chunks
}

func splitExact(text string, tokenLimit int, codec tokenizer.Codec) []Piece {
	tokens := codec.Encode(text)
	if len(tokens) <= tokenLimit {
		return []Piece{{Text: text, TokenCount: len(tokens)}}
	}
	pieces := make([]Piece, 0, (len(tokens)+tokenLimit-1)/tokenLimit)
	for start := 0; start < len(tokens); start += tokenLimit {
		end := start + tokenLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		pieces = append(pieces, Piece{
			Text:       codec.Decode(tokens[start:end]),
			TokenCount: end - start,
		})
	}
	return pieces
}

func splitApprox(text string, tokenLimit, bytesPerTok int) []Piece {
	window := tokenLimit * bytesPerTok
	if len(text) <= window {
		return []Piece{{Text: text, TokenCount: len(text) / bytesPerTok}}
	}
	runes := []rune(text)
	pieces := make([]Piece, 0, (len(runes)+window-1)/window)
	for start := 0; start < len(runes); start += window {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		part := string(runes[start:end])
		pieces = append(pieces, Piece{Text: part, TokenCount: len(part) / bytesPerTok})
	}
	return pieces
}

func bytesPerToken(tok tokenizer.Tokenizer) int {
	if approx, ok := tok.(tokenizer.Approximate); ok && approx.BytesPerToken > 0 {
		return approx.BytesPerToken
	}
	return tokenizer.DefaultBytesPerToken
}
