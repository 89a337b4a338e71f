package rag

import (
	"strings"
	"testing"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

func fragment(src SourceType, content string) Fragment {
	return Fragment{Chunk: vectorstore.Chunk{Content: content}, Source: src}
}

func TestCompose_SectionsInCanonicalOrder(t *testing.T) {
	rc := NewContext("alice", "Analyst-Gaming")
	fragments := []Fragment{
		fragment(SourceConversationHistory, "previous turn"),
		fragment(SourceUserDocuments, "user doc"),
		fragment(SourceDataMart, "revenue row"),
	}

	prompt := Compose("what changed?", fragments, rc)

	userIdx := strings.Index(prompt, "=== USER DOCUMENTS ===")
	dataIdx := strings.Index(prompt, "=== BUSINESS DATA ===")
	histIdx := strings.Index(prompt, "=== RECENT CONVERSATION ===")
	if userIdx < 0 || dataIdx < 0 || histIdx < 0 {
		t.Fatalf("missing section headers in prompt:\n%s", prompt)
	}
	if !(userIdx < dataIdx && dataIdx < histIdx) {
		t.Errorf("sections out of canonical order: user=%d data=%d hist=%d", userIdx, dataIdx, histIdx)
	}

	if strings.Contains(prompt, "=== KNOWLEDGE BASE ===") {
		t.Error("empty source must not render a section")
	}
	if !strings.Contains(prompt, "User Question: what changed?") {
		t.Error("prompt must carry the literal user question")
	}
}

func TestCompose_RoleFraming(t *testing.T) {
	rc := NewContext("bob", "Leadership-Gaming")
	fragments := []Fragment{fragment(SourceRoleSpecific, "strategy guidance")}

	prompt := Compose("q", fragments, rc)

	if !strings.Contains(prompt, "You are Mimir, an AI assistant for a Leadership-Gaming user.") {
		t.Error("missing role framing")
	}
	if !strings.Contains(prompt, "=== LEADERSHIP-GAMING SPECIFIC CONTENT ===") {
		t.Error("role-specific header must embed the uppercased role")
	}
	if !strings.Contains(prompt, "Tailor your response to the Leadership-Gaming perspective.") {
		t.Error("missing closing role instruction")
	}
}

func TestCompose_EmptyContextNotice(t *testing.T) {
	rc := NewContext("alice", "Guest")

	prompt := Compose("anything?", nil, rc)

	if !strings.Contains(prompt, "No relevant context was found") {
		t.Error("empty retrieval must announce missing context")
	}
	if !strings.Contains(prompt, "User Question: anything?") {
		t.Error("question must still be present")
	}
}

func TestCompose_FragmentTruncation(t *testing.T) {
	rc := NewContext("alice", "Guest")
	rc.MaxFragmentChars = 10

	prompt := Compose("q", []Fragment{
		fragment(SourceUserDocuments, "0123456789ABCDEF"),
	}, rc)

	if strings.Contains(prompt, "0123456789A") {
		t.Error("fragment not truncated to budget")
	}
	if !strings.Contains(prompt, "0123456789...") {
		t.Error("truncation marker missing")
	}
}

func TestCompose_HistoryTighterCeiling(t *testing.T) {
	rc := NewContext("alice", "Guest")
	rc.MaxFragmentChars = 500

	long := strings.Repeat("h", 400)
	prompt := Compose("q", []Fragment{fragment(SourceConversationHistory, long)}, rc)

	if strings.Contains(prompt, long) {
		t.Errorf("history fragment should be cut at %d chars", historyFragmentChars)
	}
	if !strings.Contains(prompt, strings.Repeat("h", historyFragmentChars)+"...") {
		t.Error("history fragment not cut at the tighter ceiling")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s     string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this is..."},
		{"no limit", 0, "no limit"},
		{"héllo wörld", 5, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.limit, got, tt.want)
		}
	}
}
