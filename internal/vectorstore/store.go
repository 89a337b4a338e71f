package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Collection is a handle on one named partition of the store.
//
// Implementations are safe for concurrent use. Add flushes before
// returning; Clear removes every chunk but keeps the collection
// registered so subsequent writes need no re-registration.
type Collection interface {
	// Name returns the sanitized collection name.
	Name() string

	// Add appends chunks to the collection. The content of each chunk is
	// embedded through the configured embedder before insertion.
	Add(ctx context.Context, chunks []Chunk) error

	// Query returns up to k chunks ranked by cosine similarity to query.
	// k <= 0 returns no results without touching the store.
	Query(ctx context.Context, query string, k int) ([]Result, error)

	// Count returns the number of chunks currently in the collection.
	Count(ctx context.Context) (int64, error)

	// Clear deletes all chunks in the collection.
	Clear(ctx context.Context) error
}

// Store holds the shared resources behind every collection handle:
// the connection pool, the embedder, and a logger.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, logger: logger}
}

// register durably records the collection name. Idempotent: concurrent
// first-access races resolve through ON CONFLICT DO NOTHING.
func (s *Store) register(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("%w: registering collection %q: %v", ErrUnavailable, name, err)
	}
	return nil
}

// embed generates one embedding per input text in a single request.
func (s *Store) embed(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	input := make([]*ai.Document, len(texts))
	for i, t := range texts {
		input[i] = &ai.Document{Content: []*ai.Part{ai.NewTextPart(t)}}
	}

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("generating embeddings: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d embeddings for %d inputs",
			len(resp.Embeddings), len(texts))
	}

	vectors := make([]pgvector.Vector, len(texts))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for input %d", i)
		}
		vectors[i] = pgvector.NewVector(e.Embedding)
	}
	return vectors, nil
}

// pgCollection implements Collection on the shared chunks table,
// partitioned by the collection column.
type pgCollection struct {
	store *Store
	name  string
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vectors, err := c.store.embed(ctx, texts)
	if err != nil {
		return err
	}

	tx, err := c.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning insert into %q: %v", ErrUnavailable, c.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, ch := range chunks {
		metadataJSON, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for chunk %q: %w", ch.ID, err)
		}
		createdAt := ch.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, collection, content, embedding, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     embedding = EXCLUDED.embedding,
			     metadata = EXCLUDED.metadata`,
			ch.ID, c.name, ch.Content, vectors[i], metadataJSON, createdAt)
		if err != nil {
			return fmt.Errorf("%w: inserting chunk %q into %q: %v", ErrUnavailable, ch.ID, c.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing insert into %q: %v", ErrUnavailable, c.name, err)
	}

	c.store.logger.Debug("added chunks", "collection", c.name, "count", len(chunks))
	return nil
}

func (c *pgCollection) Query(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	vectors, err := c.store.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	rows, err := c.store.pool.Query(ctx,
		`SELECT id, content, metadata, created_at, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE collection = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vectors[0], c.name, k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection %q: %v", ErrUnavailable, c.name, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			chunk        Chunk
			metadataJSON []byte
			similarity   float32
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &metadataJSON, &chunk.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("scanning result from %q: %w", c.name, err)
		}
		if err := json.Unmarshal(metadataJSON, &chunk.Metadata); err != nil {
			c.store.logger.Warn("failed to parse chunk metadata",
				"collection", c.name, "chunk_id", chunk.ID, "error", err)
			chunk.Metadata = make(map[string]string)
		}
		results = append(results, Result{Chunk: chunk, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading results from %q: %v", ErrUnavailable, c.name, err)
	}
	return results, nil
}

func (c *pgCollection) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = $1`, c.name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting collection %q: %v", ErrUnavailable, c.name, err)
	}
	return count, nil
}

func (c *pgCollection) Clear(ctx context.Context) error {
	tag, err := c.store.pool.Exec(ctx,
		`DELETE FROM chunks WHERE collection = $1`, c.name)
	if err != nil {
		return fmt.Errorf("%w: clearing collection %q: %v", ErrUnavailable, c.name, err)
	}
	c.store.logger.Info("cleared collection", "collection", c.name, "deleted", tag.RowsAffected())
	return nil
}

var _ Collection = (*pgCollection)(nil)
