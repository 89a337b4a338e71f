// Package ingest converts heterogeneous inputs into chunked, annotated
// documents and writes them into a vector store collection.
//
// Three input kinds are supported: free text, document sets (e.g. the
// pages extracted from a PDF), and structured records rendered to
// descriptive text by a type-specific formatter. All three pass through
// the same sliding-window splitter, so a large input may yield many
// chunks that share the same source metadata. Writes are flushed by the
// collection before the call returns; there is no deferred batching.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// Metadata keys stamped on every ingested chunk.
const (
	MetaSourceType = "source_type"
	MetaSource     = "source"
	MetaIngestedAt = "ingested_at"
	MetaDataType   = "data_type"
	MetaRecordJSON = "original_record"
)

// Document is one unit of a document set: pre-extracted text plus
// optional metadata inherited by every chunk split from it.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Ingestor writes chunked inputs into collections.
//
// Ingestor is stateless apart from its splitter configuration and is safe
// for concurrent use.
type Ingestor struct {
	splitter *Splitter
	logger   *slog.Logger
	now      func() time.Time // injectable for tests
}

// New creates an Ingestor with the given splitter. A nil splitter uses
// the default window; a nil logger falls back to slog.Default().
func New(splitter *Splitter, logger *slog.Logger) *Ingestor {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultOverlap)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{splitter: splitter, logger: logger, now: time.Now}
}

// Text splits raw text and writes the chunks into col, stamping each with
// sourceType, source, the ingestion timestamp, and any extra metadata.
// Returns the number of chunks written.
func (i *Ingestor) Text(ctx context.Context, col vectorstore.Collection, text, sourceType, source string, extra map[string]string) (int, error) {
	return i.Documents(ctx, col, []Document{{Content: text}}, sourceType, source, extra)
}

// Documents ingests a document set (for example PDF-derived pages). Each
// document is split independently; chunks inherit the document metadata
// plus the standard stamps. Returns the total number of chunks written.
func (i *Ingestor) Documents(ctx context.Context, col vectorstore.Collection, docs []Document, sourceType, source string, extra map[string]string) (int, error) {
	ingestedAt := i.now().UTC()

	var chunks []vectorstore.Chunk
	for _, doc := range docs {
		for _, text := range i.splitter.Split(doc.Content) {
			metadata := make(map[string]string, len(doc.Metadata)+len(extra)+3)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			for k, v := range extra {
				metadata[k] = v
			}
			metadata[MetaSourceType] = sourceType
			metadata[MetaSource] = source
			metadata[MetaIngestedAt] = ingestedAt.Format(time.RFC3339)

			chunks = append(chunks, vectorstore.Chunk{
				ID:        uuid.NewString(),
				Content:   text,
				Metadata:  metadata,
				CreatedAt: ingestedAt,
			})
		}
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := col.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("ingesting into %q: %w", col.Name(), err)
	}

	i.logger.Info("ingested chunks",
		"collection", col.Name(), "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// Record renders a structured record to text via its type-specific
// formatter and ingests the result. The verbatim record JSON rides along
// in chunk metadata so the original structure can be recovered.
func (i *Ingestor) Record(ctx context.Context, col vectorstore.Collection, record map[string]any, dataType, sourceType string, extra map[string]string) (int, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("marshaling %s record: %w", dataType, err)
	}

	metadata := map[string]string{
		MetaDataType:   dataType,
		MetaRecordJSON: string(recordJSON),
	}
	for k, v := range extra {
		metadata[k] = v
	}

	doc := Document{Content: FormatRecord(record, dataType), Metadata: metadata}
	return i.Documents(ctx, col, []Document{doc}, sourceType, dataType, nil)
}
