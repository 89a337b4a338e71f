// Package vectorstore manages named chunk collections backed by
// PostgreSQL + pgvector.
//
// A Collection is an isolated, named set of chunks that supports append,
// similarity search, count, and administrative clear. Collections are
// registered lazily through the Registry with get-or-create semantics and
// cached for process lifetime; the database is the durable source of truth.
//
// Embeddings are generated through an injected ai.Embedder, so the store
// treats the embedding model as an opaque text-to-vector capability.
package vectorstore

import (
	"errors"
	"regexp"
	"time"
)

// VectorDimension is the embedding dimension used by the chunks schema.
// Must match the vector(N) column in db/migrations.
const VectorDimension = 768

// ErrUnavailable indicates the backing store cannot be reached.
// Callers decide whether this degrades a source or fails the request.
var ErrUnavailable = errors.New("vector store unavailable")

// ErrInvalidName indicates a collection name violates naming constraints.
var ErrInvalidName = errors.New("invalid collection name")

// Chunk is the atomic unit of storage and retrieval: a bounded piece of
// text plus string metadata. Metadata always carries at least source_type
// and an ingestion timestamp (set by the ingestion adapters).
type Chunk struct {
	ID        string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Result is a chunk returned by a similarity query.
type Result struct {
	Chunk      Chunk
	Similarity float32 // Cosine similarity (0-1, higher = more similar)
}

// nameRe matches the constraints imposed by the chunks schema:
// 1-63 characters, alphanumeric/hyphen/underscore, alphanumeric first and
// last character.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?$`)

// ValidateName reports whether name satisfies the collection naming
// constraints. Sanitized names produced by the rag package always pass.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}
