package rag

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// DefaultSourceTimeout bounds each source's similarity query. A source
// that cannot answer in time degrades to zero fragments, exactly like an
// unreachable store.
const DefaultSourceTimeout = 10 * time.Second

// CollectionResolver resolves a collection name to a live handle with
// get-or-create semantics. *vectorstore.Registry satisfies it.
type CollectionResolver interface {
	GetOrCreate(ctx context.Context, name string) (vectorstore.Collection, error)
}

// Fragment is a retrieved chunk tagged with its originating partition
// kind for grouping during composition.
type Fragment struct {
	Chunk      vectorstore.Chunk
	Source     SourceType
	Similarity float32
}

// Retriever fans a similarity query out to every in-scope partition and
// joins the results under the request's fragment budget.
type Retriever struct {
	resolver CollectionResolver
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. Non-positive timeout falls back to
// DefaultSourceTimeout; a nil logger falls back to slog.Default().
func NewRetriever(resolver CollectionResolver, timeout time.Duration, logger *slog.Logger) *Retriever {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{resolver: resolver, timeout: timeout, logger: logger}
}

// Retrieve queries every source in rc.DataSources concurrently, each
// bounded to its share of rc.MaxFragments, and returns the joined
// fragments capped at rc.MaxFragments.
//
// Sources fail independently: an unreachable or slow store contributes
// zero fragments and is logged, never surfaced. No cross-source
// re-ranking happens after the join; fragments keep source-declaration
// order, which approximates but does not equal global relevance order.
//
// The only error returned is the caller's own context cancellation, in
// which case partial results are discarded.
func (r *Retriever) Retrieve(ctx context.Context, query string, rc Context) ([]Fragment, error) {
	if len(rc.DataSources) == 0 || rc.MaxFragments <= 0 {
		return nil, nil
	}

	quota := rc.MaxFragments / len(rc.DataSources)

	// One result slot per source: goroutines share nothing but the slice
	// they index disjointly, so the join needs no lock.
	results := make([][]Fragment, len(rc.DataSources))
	var wg sync.WaitGroup
	for i, src := range rc.DataSources {
		k := quota
		if src == SourceConversationHistory {
			// Guarantee a continuity signal even under tight budgets.
			k = min(max(quota, 1), historyQuotaCap)
		}
		if k <= 0 {
			continue
		}

		wg.Add(1)
		go func(slot int, src SourceType, k int) {
			defer wg.Done()
			results[slot] = r.querySource(ctx, query, src, k, rc)
		}(i, src, k)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Caller gone: discard rather than compose a partial context.
		return nil, err
	}

	var fragments []Fragment
	for _, frags := range results {
		fragments = append(fragments, frags...)
	}
	if len(fragments) > rc.MaxFragments {
		fragments = fragments[:rc.MaxFragments]
	}

	r.logger.Debug("retrieved fragments",
		"count", len(fragments), "sources", len(rc.DataSources), "per_source_quota", quota)
	return fragments, nil
}

// querySource runs one source's similarity query under the per-source
// timeout. Any failure degrades to nil.
func (r *Retriever) querySource(ctx context.Context, query string, src SourceType, k int, rc Context) []Fragment {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name := src.CollectionName(ownerKey(src, rc))
	col, err := r.resolver.GetOrCreate(qctx, name)
	if err != nil {
		r.logger.Warn("source unavailable, degrading to empty",
			"source", src, "collection", name, "error", err)
		return nil
	}

	results, err := col.Query(qctx, query, k)
	if err != nil {
		r.logger.Warn("source query failed, degrading to empty",
			"source", src, "collection", name, "error", err)
		return nil
	}

	fragments := make([]Fragment, 0, len(results))
	for _, res := range results {
		fragments = append(fragments, Fragment{
			Chunk:      res.Chunk,
			Source:     src,
			Similarity: res.Similarity,
		})
	}
	return fragments
}

// ownerKey returns the owner whose partition of kind src this request
// addresses: the user for per-user kinds, the role for role-specific
// content, empty for shared kinds.
func ownerKey(src SourceType, rc Context) string {
	switch {
	case src.perUser():
		return rc.UserID
	case src == SourceRoleSpecific:
		return rc.Role
	default:
		return ""
	}
}
