package vectorstore

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "common_knowledge_base", false},
		{"per user", "user_docs_alice", false},
		{"hyphenated", "role-analyst", false},
		{"single char", "a", false},
		{"two chars", "ab", false},
		{"digits", "42", false},
		{"max length", strings.Repeat("a", 63), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 64), true},
		{"leading underscore", "_docs", true},
		{"trailing hyphen", "docs-", true},
		{"interior space", "user docs", true},
		{"unicode", "документы", true},
		{"dot", "user.docs", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}
