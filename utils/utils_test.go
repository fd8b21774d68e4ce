package utils

import (
	"strings"
	"testing"
)

func TestGeneratePasscode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GeneratePasscode()
		if len(code) != 10 {
			t.Fatalf("want 10 characters, got %q", code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("passcode must be upper case: %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate passcode generated: %q", code)
		}
		seen[code] = true
	}
}

func TestGenerateUploadKey(t *testing.T) {
	key := GenerateUploadKey("payments", ".png")
	if !strings.HasPrefix(key, "payments/") {
		t.Fatalf("key must be namespaced by prefix: %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key must keep the extension: %q", key)
	}
	if strings.Contains(key, "..") {
		t.Fatalf("extension dot must not be doubled: %q", key)
	}

	if key2 := GenerateUploadKey("payments", "png"); !strings.HasSuffix(key2, ".png") {
		t.Fatalf("extension without a dot must still be applied: %q", key2)
	}
}
