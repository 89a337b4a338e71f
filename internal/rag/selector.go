package rag

import (
	"log/slog"
	"strings"
)

// defaultSources are in scope for every role.
var defaultSources = []SourceType{
	SourceUserDocuments,
	SourceCommonKnowledge,
	SourceConversationHistory,
}

// sourcePolicy adds partitions for roles matched by its predicate.
// Policies are data, not code paths: a new role label is supported
// without a change here as long as it carries a known token.
type sourcePolicy struct {
	token string
	add   []SourceType
}

func (p sourcePolicy) matches(role string) bool {
	// Role labels are canonical tokens issued by the identity layer, not
	// free text; matching is case-sensitive.
	return strings.Contains(role, p.token)
}

// rolePolicies maps role-category predicates to additional sources.
// Analytical and leadership functions get business data and role-scoped
// guidance on top of the defaults.
var rolePolicies = []sourcePolicy{
	{token: "Analyst", add: []SourceType{SourceDataMart, SourceRoleSpecific}},
	{token: "Leadership", add: []SourceType{SourceDataMart, SourceRoleSpecific}},
}

// Selector decides which partitions are in scope for a query.
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a Selector. A nil logger falls back to slog.Default().
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger}
}

// Select determines the in-scope sources for role.
//
// When explicit names are given, each is validated against the known
// enumeration; unknown names are dropped with a warning and never fail
// the request. When explicit is empty, the defaults apply plus any
// policy additions for the role; a role matching no policy still gets
// the three defaults.
//
// The result is deduplicated and ordered canonically.
func (s *Selector) Select(role string, explicit []string) []SourceType {
	inScope := make(map[SourceType]bool, len(sourceOrder))

	if len(explicit) > 0 {
		for _, name := range explicit {
			src, err := ParseSourceType(name)
			if err != nil {
				s.logger.Warn("dropping unknown data source", "source", name, "role", role)
				continue
			}
			inScope[src] = true
		}
	} else {
		for _, src := range defaultSources {
			inScope[src] = true
		}
		for _, policy := range rolePolicies {
			if policy.matches(role) {
				for _, src := range policy.add {
					inScope[src] = true
				}
			}
		}
	}

	selected := make([]SourceType, 0, len(inScope))
	for _, src := range sourceOrder {
		if inScope[src] {
			selected = append(selected, src)
		}
	}
	return selected
}
