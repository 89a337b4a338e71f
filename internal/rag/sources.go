package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SourceType identifies a partition kind. The declaration order below is
// also the fan-out and composition order.
type SourceType string

const (
	// SourceUserDocuments holds documents uploaded by one user.
	SourceUserDocuments SourceType = "user_documents"

	// SourceCommonKnowledge is the knowledge base shared by all users.
	SourceCommonKnowledge SourceType = "common_knowledge"

	// SourceDataMart holds structured business records rendered to text.
	SourceDataMart SourceType = "data_mart"

	// SourceRoleSpecific holds guidance owned by a single role.
	SourceRoleSpecific SourceType = "role_specific"

	// SourceConversationHistory holds one user's prior exchanges.
	SourceConversationHistory SourceType = "conversation_history"
)

// sourceOrder fixes the canonical ordering of sources for fan-out,
// truncation, and prompt composition.
var sourceOrder = []SourceType{
	SourceUserDocuments,
	SourceCommonKnowledge,
	SourceDataMart,
	SourceRoleSpecific,
	SourceConversationHistory,
}

// ParseSourceType validates a caller-supplied source name.
func ParseSourceType(s string) (SourceType, error) {
	for _, known := range sourceOrder {
		if s == string(known) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// perUser reports whether the partition kind is owned by a single user.
func (s SourceType) perUser() bool {
	return s == SourceUserDocuments || s == SourceConversationHistory
}

// CollectionName derives the collection name for this partition kind and
// owner key. Shared kinds ignore the owner. The result always satisfies
// the store's naming constraints.
func (s SourceType) CollectionName(owner string) string {
	switch s {
	case SourceUserDocuments:
		return SanitizeCollectionName("user_docs_" + owner)
	case SourceCommonKnowledge:
		return "common_knowledge_base"
	case SourceDataMart:
		return "data_mart_base"
	case SourceRoleSpecific:
		return SanitizeCollectionName("role_" + strings.ToLower(strings.ReplaceAll(owner, "-", "_")))
	case SourceConversationHistory:
		return SanitizeCollectionName("chat_history_" + owner)
	default:
		return SanitizeCollectionName(string(s))
	}
}

const maxCollectionNameLen = 63

// SanitizeCollectionName maps an arbitrary owner-derived name onto the
// store's naming constraints: 1-63 characters, alphanumeric, hyphen or
// underscore, with an alphanumeric first and last character. Deterministic
// for a given input; names that must be truncated get a content-hash
// suffix so distinct long keys never collide.
func SanitizeCollectionName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isAlnum(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()

	if s == "" || !isAlnum(rune(s[0])) {
		s = "a" + s
	}
	if !isAlnum(rune(s[len(s)-1])) {
		s += "1"
	}

	if len(s) > maxCollectionNameLen {
		sum := sha256.Sum256([]byte(name))
		suffix := hex.EncodeToString(sum[:])[:8]
		s = s[:maxCollectionNameLen-len(suffix)-1] + "_" + suffix
	}
	return s
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
