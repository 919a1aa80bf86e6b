package utils

import (
	"strings"
	"testing"

	"github.com/codedrop-dev/codedrop/internal/domain"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		code := GenerateCode()
		if len(code) != domain.CodeLength {
			t.Fatalf("unexpected code length: got %d, expected %d", len(code), domain.CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains character outside alphabet", code)
			}
		}
		if seen[code] {
			t.Fatalf("duplicate code generated within 1000 draws: %q", code)
		}
		seen[code] = true
	}
}
