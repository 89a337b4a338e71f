package rag

import (
	"fmt"
	"strings"
)

// sectionHeaders labels each source's prompt section. The role-specific
// header is rendered per request since it embeds the role label.
var sectionHeaders = map[SourceType]string{
	SourceUserDocuments:       "=== USER DOCUMENTS ===",
	SourceCommonKnowledge:     "=== KNOWLEDGE BASE ===",
	SourceDataMart:            "=== BUSINESS DATA ===",
	SourceConversationHistory: "=== RECENT CONVERSATION ===",
}

// Compose renders the final prompt: a role-aware framing, one labeled
// section per source type in canonical order, the literal user query,
// and a closing instruction to answer from the available context.
//
// Each fragment is truncated to rc.MaxFragmentChars by a hard character
// cut (conversation history tighter still). The cut can land mid-word;
// that only affects instructional framing, not factual retrieval.
func Compose(query string, fragments []Fragment, rc Context) string {
	bySource := make(map[SourceType][]Fragment, len(sourceOrder))
	for _, f := range fragments {
		bySource[f.Source] = append(bySource[f.Source], f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are Mimir, an AI assistant for a %s user.\n", rc.Role)
	b.WriteString("Use the following context from multiple sources to answer the question.\n")
	b.WriteString("Prioritize the most relevant and recent information.\n\n")

	if len(fragments) == 0 {
		b.WriteString("No relevant context was found in the available sources for this question.\n\n")
	}

	for _, src := range sourceOrder {
		frags := bySource[src]
		if len(frags) == 0 {
			continue
		}

		header := sectionHeaders[src]
		if src == SourceRoleSpecific {
			header = fmt.Sprintf("=== %s SPECIFIC CONTENT ===", strings.ToUpper(rc.Role))
		}
		b.WriteString(header)
		b.WriteByte('\n')

		ceiling := rc.MaxFragmentChars
		if src == SourceConversationHistory && ceiling > historyFragmentChars {
			ceiling = historyFragmentChars
		}
		for _, f := range frags {
			b.WriteString(truncate(f.Chunk.Content, ceiling))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "User Question: %s\n\n", query)
	b.WriteString("Provide a comprehensive answer based on the available context.\n")
	fmt.Fprintf(&b, "Tailor your response to the %s perspective.\n", rc.Role)
	b.WriteString("If you don't have enough information, say so clearly.")

	return b.String()
}

// truncate hard-cuts s to at most limit runes, marking the cut.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
