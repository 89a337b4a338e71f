package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// mockCollection implements vectorstore.Collection with canned results.
type mockCollection struct {
	name    string
	results []vectorstore.Result
	err     error
	delay   time.Duration

	mu    sync.Mutex
	adds  [][]vectorstore.Chunk
	lastK int
}

func (m *mockCollection) Name() string { return m.name }

func (m *mockCollection) Add(_ context.Context, chunks []vectorstore.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.adds = append(m.adds, chunks)
	return nil
}

func (m *mockCollection) Query(ctx context.Context, _ string, k int) ([]vectorstore.Result, error) {
	m.mu.Lock()
	m.lastK = k
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockCollection) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, chunks := range m.adds {
		n += int64(len(chunks))
	}
	return n + int64(len(m.results)), nil
}

func (m *mockCollection) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds = nil
	m.results = nil
	return nil
}

// mockResolver implements CollectionResolver over a fixed name map.
type mockResolver struct {
	mu          sync.Mutex
	collections map[string]*mockCollection
	errs        map[string]error
}

func newMockResolver() *mockResolver {
	return &mockResolver{collections: make(map[string]*mockCollection), errs: make(map[string]error)}
}

func (r *mockResolver) GetOrCreate(_ context.Context, name string) (vectorstore.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[name]; err != nil {
		return nil, err
	}
	col, ok := r.collections[name]
	if !ok {
		col = &mockCollection{name: name}
		r.collections[name] = col
	}
	return col, nil
}

func (r *mockResolver) collection(name string) *mockCollection {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[name]
	if !ok {
		col = &mockCollection{name: name}
		r.collections[name] = col
	}
	return col
}

func resultsOf(contents ...string) []vectorstore.Result {
	out := make([]vectorstore.Result, len(contents))
	for i, c := range contents {
		out[i] = vectorstore.Result{
			Chunk:      vectorstore.Chunk{ID: fmt.Sprintf("id-%d", i), Content: c},
			Similarity: 0.9,
		}
	}
	return out
}

func testContext(sources ...SourceType) Context {
	rc := NewContext("alice", "Analyst-Gaming")
	rc.DataSources = sources
	return rc
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestRetriever_QuotaSplit(t *testing.T) {
	resolver := newMockResolver()
	resolver.collection("user_docs_alice").results = resultsOf("u1", "u2", "u3")
	resolver.collection("common_knowledge_base").results = resultsOf("k1", "k2", "k3")

	r := NewRetriever(resolver, 0, discardLogger())
	rc := testContext(SourceUserDocuments, SourceCommonKnowledge)
	rc.MaxFragments = 4

	fragments, err := r.Retrieve(context.Background(), "query", rc)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	// Two sources share a budget of 4: two fragments each.
	if len(fragments) != 4 {
		t.Fatalf("got %d fragments, want 4", len(fragments))
	}
	if k := resolver.collection("user_docs_alice").lastK; k != 2 {
		t.Errorf("user docs queried with k=%d, want 2", k)
	}
	if fragments[0].Source != SourceUserDocuments || fragments[2].Source != SourceCommonKnowledge {
		t.Errorf("fragments not in source order: %+v", fragments)
	}
}

func TestRetriever_HistoryMinimumQuota(t *testing.T) {
	resolver := newMockResolver()
	for _, src := range sourceOrder {
		resolver.collection(src.CollectionName("alice")).results = resultsOf("a")
	}
	resolver.collection(SourceRoleSpecific.CollectionName("Analyst-Gaming")).results = resultsOf("r")

	r := NewRetriever(resolver, 0, discardLogger())

	// Five sources share a budget of 4: integer quota is 0, so every
	// source is skipped except history, which is floored at k=1.
	rc := testContext(sourceOrder...)
	rc.MaxFragments = 4

	fragments, err := r.Retrieve(context.Background(), "query", rc)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	history := resolver.collection(SourceConversationHistory.CollectionName("alice"))
	if history.lastK != 1 {
		t.Errorf("history queried with k=%d, want 1", history.lastK)
	}

	// Only history had a non-zero allowance.
	for _, f := range fragments {
		if f.Source != SourceConversationHistory {
			t.Errorf("unexpected fragment from %s under zero quota", f.Source)
		}
	}
}

func TestRetriever_HistoryQuotaCap(t *testing.T) {
	resolver := newMockResolver()
	resolver.collection(SourceConversationHistory.CollectionName("alice")).results =
		resultsOf("h1", "h2", "h3", "h4", "h5")

	r := NewRetriever(resolver, 0, discardLogger())
	rc := testContext(SourceConversationHistory)
	rc.MaxFragments = 20

	if _, err := r.Retrieve(context.Background(), "query", rc); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	history := resolver.collection(SourceConversationHistory.CollectionName("alice"))
	if history.lastK != historyQuotaCap {
		t.Errorf("history queried with k=%d, want cap %d", history.lastK, historyQuotaCap)
	}
}

func TestRetriever_SourceFailureDegrades(t *testing.T) {
	resolver := newMockResolver()
	resolver.collection("user_docs_alice").err = errors.New("connection refused")
	resolver.collection("common_knowledge_base").results = resultsOf("k1")
	resolver.errs[SourceConversationHistory.CollectionName("alice")] = errors.New("resolver down")

	r := NewRetriever(resolver, 0, discardLogger())
	rc := testContext(SourceUserDocuments, SourceCommonKnowledge, SourceConversationHistory)
	rc.MaxFragments = 6

	fragments, err := r.Retrieve(context.Background(), "query", rc)
	if err != nil {
		t.Fatalf("failures must not surface, got %v", err)
	}
	if len(fragments) != 1 || fragments[0].Source != SourceCommonKnowledge {
		t.Errorf("expected only the healthy source's fragment, got %+v", fragments)
	}
}

func TestRetriever_SlowSourceTimesOut(t *testing.T) {
	resolver := newMockResolver()
	slow := resolver.collection("user_docs_alice")
	slow.results = resultsOf("late")
	slow.delay = 200 * time.Millisecond
	resolver.collection("common_knowledge_base").results = resultsOf("k1")

	r := NewRetriever(resolver, 20*time.Millisecond, discardLogger())
	rc := testContext(SourceUserDocuments, SourceCommonKnowledge)
	rc.MaxFragments = 4

	fragments, err := r.Retrieve(context.Background(), "query", rc)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, f := range fragments {
		if f.Source == SourceUserDocuments {
			t.Error("slow source should have degraded to zero fragments")
		}
	}
}

func TestRetriever_CallerCancellationDiscardsPartials(t *testing.T) {
	resolver := newMockResolver()
	resolver.collection("common_knowledge_base").results = resultsOf("k1")
	slow := resolver.collection("user_docs_alice")
	slow.delay = 100 * time.Millisecond

	r := NewRetriever(resolver, time.Second, discardLogger())
	rc := testContext(SourceUserDocuments, SourceCommonKnowledge)
	rc.MaxFragments = 4

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	fragments, err := r.Retrieve(ctx, "query", rc)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
	if fragments != nil {
		t.Errorf("partial results must be discarded on cancellation, got %+v", fragments)
	}
}

func TestRetriever_EmptyScope(t *testing.T) {
	r := NewRetriever(newMockResolver(), 0, discardLogger())

	fragments, err := r.Retrieve(context.Background(), "query", testContext())
	if err != nil || fragments != nil {
		t.Errorf("empty scope should yield (nil, nil), got (%v, %v)", fragments, err)
	}
}
