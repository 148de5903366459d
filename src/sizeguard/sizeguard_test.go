package sizeguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docmesh/chunkstore/src/tokenizer"
)

func TestCheckTokenCountBoundary(t *testing.T) {
	limits := DefaultLimits()

	ok, msg := limits.CheckTokenCount(limits.MaxSafeTokenCount)
	if !ok {
		t.Fatalf("count equal to the ceiling must pass: %s", msg)
	}

	ok, msg = limits.CheckTokenCount(limits.MaxSafeTokenCount + 1)
	if ok {
		t.Fatalf("count above the ceiling must fail")
	}
	if !strings.Contains(msg, "4000001") || !strings.Contains(msg, "4000000") {
		t.Fatalf("failure message must carry both the count and the ceiling, got %q", msg)
	}
}

func TestCheckFileUsesByteSizeOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", 400)), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	limits := DefaultLimits()
	limits.MaxSafeTokenCount = 99
	// 400 bytes / 4 bytes per token = 100 estimated tokens.
	ok, msg := limits.CheckFile(path)
	if ok {
		t.Fatalf("100 estimated tokens must exceed a ceiling of 99")
	}
	if !strings.Contains(msg, "100") {
		t.Fatalf("message must carry the estimate, got %q", msg)
	}

	limits.MaxSafeTokenCount = 100
	if ok, msg := limits.CheckFile(path); !ok {
		t.Fatalf("estimate at the ceiling must pass: %s", msg)
	}
}

func TestCheckFileMissing(t *testing.T) {
	limits := DefaultLimits()
	if ok, _ := limits.CheckFile(filepath.Join(t.TempDir(), "missing")); ok {
		t.Fatalf("an unreadable file must not validate")
	}
}

func TestRunPrecedence(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxSafeTokenCount = 10

	count := 11
	// An explicit token count wins over a file path and content.
	ok, _ := limits.Run(Check{TokenCount: &count, FilePath: "/nonexistent", Content: "tiny"})
	if ok {
		t.Fatalf("explicit count of 11 must fail a ceiling of 10")
	}

	ok, _ = limits.Run(Check{Content: strings.Repeat("a", 80), Tokenizer: tokenizer.Approximate{BytesPerToken: 4}})
	if ok {
		t.Fatalf("20 content tokens must fail a ceiling of 10")
	}

	ok, _ = limits.Run(Check{Content: "tiny", Tokenizer: tokenizer.Approximate{BytesPerToken: 4}})
	if !ok {
		t.Fatalf("small content must pass")
	}
}

func TestLimitsValidate(t *testing.T) {
	if err := DefaultLimits().Validate(); err != nil {
		t.Fatalf("default limits must be self-consistent: %v", err)
	}

	bad := DefaultLimits()
	bad.ChunkTokenLimit = bad.DocSizeBytes // a full chunk could not fit one record
	if err := bad.Validate(); err == nil {
		t.Fatalf("chunk budget exceeding the document ceiling must be rejected")
	}

	bad = DefaultLimits()
	bad.MaxSafeTokenCount = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("a zero ceiling must be rejected")
	}
}
