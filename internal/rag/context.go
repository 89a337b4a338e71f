package rag

import (
	"fmt"
	"time"
)

// Context budget defaults. Conversation-history fragments are framed
// tighter than document fragments when composing the prompt.
const (
	// DefaultMaxFragments caps the total fragments handed to composition.
	DefaultMaxFragments = 5

	// DefaultMaxFragmentChars is the per-fragment character ceiling.
	DefaultMaxFragmentChars = 500

	// historyFragmentChars is the tighter ceiling applied to
	// conversation-history fragments during composition.
	historyFragmentChars = 300

	// historyQuotaCap bounds the forced minimum quota for the
	// conversation-history source under tight budgets.
	historyQuotaCap = 3
)

// Context carries the request-scoped retrieval parameters. It is
// ephemeral and never persisted.
type Context struct {
	UserID    string
	Role      string
	SessionID string

	// DataSources is the set of partitions in scope for this request,
	// in canonical source order.
	DataSources []SourceType

	// MaxFragments is the hard ceiling on fragments returned to the
	// composer across all sources.
	MaxFragments int

	// MaxFragmentChars is the per-fragment character ceiling applied
	// during composition.
	MaxFragmentChars int
}

// NewContext creates a request context with default budgets and a fresh
// session identifier.
func NewContext(userID, role string) Context {
	return Context{
		UserID:           userID,
		Role:             role,
		SessionID:        fmt.Sprintf("%s_%s", userID, time.Now().UTC().Format(time.RFC3339)),
		MaxFragments:     DefaultMaxFragments,
		MaxFragmentChars: DefaultMaxFragmentChars,
	}
}
