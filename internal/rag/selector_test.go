package rag

import (
	"log/slog"
	"testing"
)

func sourcesEqual(a, b []SourceType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelector_RoleBasedSelection(t *testing.T) {
	tests := []struct {
		name string
		role string
		want []SourceType
	}{
		{
			name: "analyst gets business data",
			role: "Analyst-Gaming",
			want: []SourceType{SourceUserDocuments, SourceCommonKnowledge, SourceDataMart, SourceRoleSpecific, SourceConversationHistory},
		},
		{
			name: "leadership gets business data",
			role: "Leadership-Non-Gaming",
			want: []SourceType{SourceUserDocuments, SourceCommonKnowledge, SourceDataMart, SourceRoleSpecific, SourceConversationHistory},
		},
		{
			name: "unknown role gets defaults",
			role: "Guest",
			want: []SourceType{SourceUserDocuments, SourceCommonKnowledge, SourceConversationHistory},
		},
		{
			name: "empty role gets defaults",
			role: "",
			want: []SourceType{SourceUserDocuments, SourceCommonKnowledge, SourceConversationHistory},
		},
		{
			name: "match is case-sensitive",
			role: "analyst-gaming",
			want: []SourceType{SourceUserDocuments, SourceCommonKnowledge, SourceConversationHistory},
		},
	}

	s := NewSelector(slog.New(slog.DiscardHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Select(tt.role, nil)
			if !sourcesEqual(got, tt.want) {
				t.Errorf("Select(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestSelector_ExplicitSources(t *testing.T) {
	s := NewSelector(slog.New(slog.DiscardHandler))

	t.Run("explicit overrides role policy", func(t *testing.T) {
		got := s.Select("Analyst-Gaming", []string{"common_knowledge"})
		want := []SourceType{SourceCommonKnowledge}
		if !sourcesEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("unknown names dropped, request survives", func(t *testing.T) {
		got := s.Select("Guest", []string{"data_mart", "telepathy", "user_documents"})
		want := []SourceType{SourceUserDocuments, SourceDataMart}
		if !sourcesEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		got := s.Select("Guest", []string{"data_mart", "data_mart"})
		want := []SourceType{SourceDataMart}
		if !sourcesEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("all unknown leaves empty scope", func(t *testing.T) {
		got := s.Select("Guest", []string{"nope"})
		if len(got) != 0 {
			t.Errorf("got %v, want empty", got)
		}
	})

	t.Run("result follows canonical order regardless of input order", func(t *testing.T) {
		got := s.Select("Guest", []string{"conversation_history", "user_documents"})
		want := []SourceType{SourceUserDocuments, SourceConversationHistory}
		if !sourcesEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}
