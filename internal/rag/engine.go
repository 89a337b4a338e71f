package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mimir-ai/mimir/internal/ingest"
)

// Generator produces a completion for a fully composed prompt. The
// genai client satisfies it; tests substitute a canned implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answer is the result of one fused query.
type Answer struct {
	// Response is the generated answer text.
	Response string

	// SourcesUsed names the partition kinds that were in scope for the
	// query, in canonical order, whether or not each contributed
	// fragments.
	SourcesUsed []string

	// SessionID identifies the exchange for correlation in logs.
	SessionID string
}

// CollectionStatus reports one partition's collection and its size.
type CollectionStatus struct {
	Source     SourceType
	Collection string
	Documents  int64
}

// Engine orchestrates the full query path: source selection, concurrent
// retrieval, prompt composition, generation, and background persistence
// of the exchange. It also exposes the administrative ingestion and
// maintenance operations for each partition kind.
type Engine struct {
	selector  *Selector
	retriever *Retriever
	resolver  CollectionResolver
	ingestor  *ingest.Ingestor
	generator Generator
	history   *historyWriter
	logger    *slog.Logger

	maxFragments     int
	maxFragmentChars int
	sourceTimeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSourceTimeout bounds each source's retrieval query.
func WithSourceTimeout(d time.Duration) Option {
	return func(e *Engine) { e.sourceTimeout = d }
}

// WithFragmentBudget overrides the per-request fragment count and
// per-fragment character ceilings. Non-positive values keep the defaults.
func WithFragmentBudget(maxFragments, maxFragmentChars int) Option {
	return func(e *Engine) {
		if maxFragments > 0 {
			e.maxFragments = maxFragments
		}
		if maxFragmentChars > 0 {
			e.maxFragmentChars = maxFragmentChars
		}
	}
}

// NewEngine wires an Engine over the given collection resolver, ingestor
// and generator.
func NewEngine(resolver CollectionResolver, ingestor *ingest.Ingestor, generator Generator, opts ...Option) *Engine {
	e := &Engine{
		resolver:         resolver,
		ingestor:         ingestor,
		generator:        generator,
		logger:           slog.Default(),
		maxFragments:     DefaultMaxFragments,
		maxFragmentChars: DefaultMaxFragmentChars,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Collaborators are built only after every option has applied, so
	// option order never changes which logger or timeout they see.
	e.selector = NewSelector(e.logger)
	e.retriever = NewRetriever(e.resolver, e.sourceTimeout, e.logger)
	e.history = newHistoryWriter(e.resolver, e.logger)
	return e
}

// Answer runs one fused query for the user.
//
// Sources are selected from the role (or the explicit override), queried
// concurrently, and the surviving fragments are composed into a single
// prompt for generation. Retrieval failures degrade per source;
// generation failure is fatal and wrapped in ErrGeneration. On success
// the exchange is queued for background persistence into the user's
// conversation history before the answer returns.
func (e *Engine) Answer(ctx context.Context, userID, role, query string, explicitSources []string) (Answer, error) {
	rc := NewContext(userID, role)
	rc.MaxFragments = e.maxFragments
	rc.MaxFragmentChars = e.maxFragmentChars
	rc.DataSources = e.selector.Select(role, explicitSources)

	started := time.Now()
	e.logger.Info("answering query",
		"user_id", userID, "role", role, "session_id", rc.SessionID,
		"sources", len(rc.DataSources))

	fragments, err := e.retriever.Retrieve(ctx, query, rc)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving context: %w", err)
	}

	prompt := Compose(query, fragments, rc)

	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	e.history.record(turn{userID: userID, userInput: query, aiResponse: response})

	sources := make([]string, 0, len(rc.DataSources))
	for _, src := range rc.DataSources {
		sources = append(sources, string(src))
	}

	e.logger.Info("answered query",
		"user_id", userID, "session_id", rc.SessionID,
		"fragments", len(fragments), "elapsed", time.Since(started))

	return Answer{
		Response:    response,
		SourcesUsed: sources,
		SessionID:   rc.SessionID,
	}, nil
}

// AddUserDocument ingests content into one user's document partition.
// Returns the number of chunks written.
func (e *Engine) AddUserDocument(ctx context.Context, userID, source, content string) (int, error) {
	col, err := e.resolver.GetOrCreate(ctx, SourceUserDocuments.CollectionName(userID))
	if err != nil {
		return 0, err
	}
	return e.ingestor.Text(ctx, col, content, string(SourceUserDocuments), source,
		map[string]string{"user_id": userID})
}

// AddUserDocuments ingests a document set (for example PDF-derived
// pages) into one user's document partition.
func (e *Engine) AddUserDocuments(ctx context.Context, userID, source string, docs []ingest.Document) (int, error) {
	col, err := e.resolver.GetOrCreate(ctx, SourceUserDocuments.CollectionName(userID))
	if err != nil {
		return 0, err
	}
	return e.ingestor.Documents(ctx, col, docs, string(SourceUserDocuments), source,
		map[string]string{"user_id": userID})
}

// AddKnowledge ingests content into the shared knowledge base.
func (e *Engine) AddKnowledge(ctx context.Context, source, content string) (int, error) {
	col, err := e.resolver.GetOrCreate(ctx, SourceCommonKnowledge.CollectionName(""))
	if err != nil {
		return 0, err
	}
	return e.ingestor.Text(ctx, col, content, string(SourceCommonKnowledge), source, nil)
}

// AddDataMartRecord renders a structured record to text and ingests it
// into the shared business-data partition.
func (e *Engine) AddDataMartRecord(ctx context.Context, record map[string]any, dataType string) (int, error) {
	col, err := e.resolver.GetOrCreate(ctx, SourceDataMart.CollectionName(""))
	if err != nil {
		return 0, err
	}
	return e.ingestor.Record(ctx, col, record, dataType, string(SourceDataMart), nil)
}

// AddRoleContent ingests guidance into one role's partition.
func (e *Engine) AddRoleContent(ctx context.Context, role, source, content string) (int, error) {
	col, err := e.resolver.GetOrCreate(ctx, SourceRoleSpecific.CollectionName(role))
	if err != nil {
		return 0, err
	}
	return e.ingestor.Text(ctx, col, content, string(SourceRoleSpecific), source,
		map[string]string{"role": role})
}

// Clear removes all documents from one partition. The collection stays
// registered and usable. Owner names the user for per-user kinds and the
// role for role-specific content; shared kinds ignore it.
func (e *Engine) Clear(ctx context.Context, src SourceType, owner string) error {
	col, err := e.resolver.GetOrCreate(ctx, src.CollectionName(owner))
	if err != nil {
		return err
	}
	if err := col.Clear(ctx); err != nil {
		return fmt.Errorf("clearing %q: %w", col.Name(), err)
	}
	e.logger.Info("cleared collection", "collection", col.Name(), "source", src)
	return nil
}

// Status reports the collection name and document count for each given
// partition. Owner is resolved per kind as in Clear.
func (e *Engine) Status(ctx context.Context, sources []SourceType, owner string) ([]CollectionStatus, error) {
	statuses := make([]CollectionStatus, 0, len(sources))
	for _, src := range sources {
		col, err := e.resolver.GetOrCreate(ctx, src.CollectionName(owner))
		if err != nil {
			return nil, err
		}
		count, err := col.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %q: %w", col.Name(), err)
		}
		statuses = append(statuses, CollectionStatus{
			Source:     src,
			Collection: col.Name(),
			Documents:  count,
		})
	}
	return statuses, nil
}

// AllSources returns every partition kind in canonical order.
func AllSources() []SourceType {
	out := make([]SourceType, len(sourceOrder))
	copy(out, sourceOrder)
	return out
}

// Close drains the background history queue. Call once on shutdown
// after the last Answer has returned.
func (e *Engine) Close() {
	e.history.close()
}
