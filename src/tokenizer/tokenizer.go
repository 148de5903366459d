// Package tokenizer resolves named subword encodings and counts tokens,
// falling back to a bytes-per-token approximation when no exact encoding
// is available.
package tokenizer

import (
	"log"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/docmesh/chunkstore/src/cache"
)

const (
	// DefaultEncoding is the encoding used when no name is given.
	DefaultEncoding = "o200k_base"

	// DefaultBytesPerToken is the approximation ratio: one token is around
	// four bytes of English text.
	DefaultBytesPerToken = 4
)

// Tokenizer counts tokens in text. Implementations are either exact
// (they also satisfy Codec) or approximate.
type Tokenizer interface {
	Count(text string) int
}

// Codec is the exact-tokenizer capability: callers that need lossless
// token-window splitting assert for it instead of checking nilness.
type Codec interface {
	Tokenizer
	Encode(text string) []int
	Decode(tokens []int) string
}

// Exact wraps a tiktoken BPE encoding.
type Exact struct {
	name string
	enc  *tiktoken.Tiktoken
}

// Name returns the encoding name this tokenizer resolved from.
func (e *Exact) Name() string { return e.name }

func (e *Exact) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(e.enc.Encode(text, nil, nil))
}

func (e *Exact) Encode(text string) []int {
	return e.enc.Encode(text, nil, nil)
}

func (e *Exact) Decode(tokens []int) string {
	return e.enc.Decode(tokens)
}

// Approximate estimates token counts from byte length. It is the fallback
// when no exact encoding can be resolved.
type Approximate struct {
	BytesPerToken int
}

func (a Approximate) Count(text string) int {
	bpt := a.BytesPerToken
	if bpt <= 0 {
		bpt = DefaultBytesPerToken
	}
	return len(text) / bpt
}

// Resolution is not free: tiktoken loads the BPE vocabulary for an encoding
// the first time it is requested. One entry per distinct name.
var resolved = cache.NewLRUCache(16, 0)

// Resolve returns a tokenizer for the named encoding. It tries the name as
// an encoding first, then as a model name, and finally falls back to the
// byte-ratio approximation. Resolve never fails; the returned value reports
// the capability that was actually obtained.
func Resolve(name string) Tokenizer {
	if name == "" {
		name = DefaultEncoding
	}
	tok := resolved.GetOrLoad(name, func() any {
		return resolve(name)
	})
	return tok.(Tokenizer)
}

func resolve(name string) Tokenizer {
	enc, err := tiktoken.GetEncoding(name)
	if err == nil {
		return &Exact{name: name, enc: enc}
	}
	enc, modelErr := tiktoken.EncodingForModel(name)
	if modelErr == nil {
		log.Printf("[Tokenizer] %q resolved as a model name rather than an encoding", name)
		return &Exact{name: name, enc: enc}
	}
	log.Printf("[Tokenizer] no exact tokenizer for %q (%v); counting at %d bytes per token", name, err, DefaultBytesPerToken)
	return Approximate{BytesPerToken: DefaultBytesPerToken}
}

// Count returns the token count of text under tok. A nil tok counts with
// the default approximation. Count of the empty string is always zero.
func Count(text string, tok Tokenizer) int {
	if text == "" {
		return 0
	}
	if tok == nil {
		tok = Approximate{}
	}
	return tok.Count(text)
}
