package tokenizer

import (
	"strings"
	"testing"
)

func TestApproximateCountUsesByteRatio(t *testing.T) {
	tok := Approximate{BytesPerToken: 4}
	if got := tok.Count(strings.Repeat("a", 400)); got != 100 {
		t.Fatalf("expected 100 tokens, got %d", got)
	}
}

func TestCountEmptyIsZero(t *testing.T) {
	if got := Count("", Approximate{}); got != 0 {
		t.Fatalf("expected 0 tokens for empty text, got %d", got)
	}
	if got := Count("", nil); got != 0 {
		t.Fatalf("expected 0 tokens with nil tokenizer, got %d", got)
	}
}

func TestCountNilTokenizerFallsBack(t *testing.T) {
	if got := Count("abcdefgh", nil); got != 2 {
		t.Fatalf("expected 2 approximate tokens, got %d", got)
	}
}

func TestResolveUnknownNameFallsBackToApproximate(t *testing.T) {
	tok := Resolve("no-such-encoding-or-model")
	if tok == nil {
		t.Fatalf("Resolve must never return nil")
	}
	if _, ok := tok.(Codec); ok {
		t.Fatalf("unknown name must not resolve to an exact tokenizer")
	}
	approx, ok := tok.(Approximate)
	if !ok {
		t.Fatalf("expected Approximate fallback, got %T", tok)
	}
	if approx.BytesPerToken != DefaultBytesPerToken {
		t.Fatalf("fallback ratio = %d, want %d", approx.BytesPerToken, DefaultBytesPerToken)
	}
}

func TestResolveCachesResolution(t *testing.T) {
	first := Resolve("another-unknown-name")
	second := Resolve("another-unknown-name")
	if first != second {
		t.Fatalf("repeated resolution of the same name should hit the cache")
	}
}
