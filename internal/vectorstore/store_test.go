package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mimir-ai/mimir/internal/testutil"
	"github.com/mimir-ai/mimir/internal/vectorstore"
)

func setupRegistry(t *testing.T) (*vectorstore.Registry, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	store := vectorstore.New(db.Pool, testutil.FakeEmbedder{}, testutil.DiscardLogger())
	return vectorstore.NewRegistry(store), cleanup
}

func chunkOf(content string) vectorstore.Chunk {
	return vectorstore.Chunk{
		ID:      uuid.NewString(),
		Content: content,
		Metadata: map[string]string{
			"source_type": "common_knowledge",
		},
	}
}

func TestRegistry_GetOrCreate(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	col, err := registry.GetOrCreate(ctx, "common_knowledge_base")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if col.Name() != "common_knowledge_base" {
		t.Errorf("Name() = %q", col.Name())
	}

	again, err := registry.GetOrCreate(ctx, "common_knowledge_base")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if again != col {
		t.Error("repeated GetOrCreate must return the cached handle")
	}

	if _, err := registry.GetOrCreate(ctx, "_bad name_"); !errors.Is(err, vectorstore.ErrInvalidName) {
		t.Errorf("invalid name: got %v, want ErrInvalidName", err)
	}
}

func TestCollection_AddQueryRoundtrip(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	col, err := registry.GetOrCreate(ctx, "user_docs_alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	chunks := []vectorstore.Chunk{
		chunkOf("the quarterly revenue grew by 28 percent"),
		chunkOf("employee onboarding takes two weeks"),
		chunkOf("the cafeteria menu changes on mondays"),
	}
	if err := col.Add(ctx, chunks); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err := col.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("Count = %d, want 3", count)
	}

	// The fake embedder maps identical texts to identical unit vectors, so
	// querying with a stored text must rank that chunk first at ~1.0.
	results, err := col.Query(ctx, "employee onboarding takes two weeks", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.Content != "employee onboarding takes two weeks" {
		t.Errorf("top result = %q", results[0].Chunk.Content)
	}
	if results[0].Similarity < 0.99 {
		t.Errorf("exact match similarity = %f, want ~1.0", results[0].Similarity)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not ordered by similarity")
	}
	if results[0].Chunk.Metadata["source_type"] != "common_knowledge" {
		t.Errorf("metadata lost on roundtrip: %+v", results[0].Chunk.Metadata)
	}
	if results[0].Chunk.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestCollection_QueryNonPositiveK(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	col, err := registry.GetOrCreate(ctx, "common_knowledge_base")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	for _, k := range []int{0, -1} {
		results, err := col.Query(ctx, "anything", k)
		if err != nil {
			t.Errorf("Query(k=%d): %v", k, err)
		}
		if results != nil {
			t.Errorf("Query(k=%d) = %v, want nil", k, results)
		}
	}
}

func TestCollection_AddUpsertsByID(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	col, err := registry.GetOrCreate(ctx, "data_mart_base")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	chunk := chunkOf("initial content")
	if err := col.Add(ctx, []vectorstore.Chunk{chunk}); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	chunk.Content = "revised content"
	if err := col.Add(ctx, []vectorstore.Chunk{chunk}); err != nil {
		t.Fatalf("second Add: %v", err)
	}

	count, err := col.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1 after upsert", count)
	}

	results, err := col.Query(ctx, "revised content", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.Content != "revised content" {
		t.Errorf("upsert did not replace content: %+v", results)
	}
}

func TestCollection_ClearKeepsRegistration(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	col, err := registry.GetOrCreate(ctx, "chat_history_alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := col.Add(ctx, []vectorstore.Chunk{chunkOf("User: hi\nAssistant: hello")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := col.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, err := col.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Count after Clear = %d, want 0", count)
	}

	// The collection stays registered, so writes resume immediately.
	if err := col.Add(ctx, []vectorstore.Chunk{chunkOf("User: back again\nAssistant: welcome")}); err != nil {
		t.Fatalf("Add after Clear: %v", err)
	}
	count, err = col.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count after re-add = %d, want 1", count)
	}
}

func TestCollections_Isolated(t *testing.T) {
	registry, cleanup := setupRegistry(t)
	defer cleanup()
	ctx := context.Background()

	docs, err := registry.GetOrCreate(ctx, "user_docs_alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	knowledge, err := registry.GetOrCreate(ctx, "common_knowledge_base")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := docs.Add(ctx, []vectorstore.Chunk{chunkOf("alice private notes")}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err := knowledge.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("writes leaked across collections: count = %d", count)
	}

	results, err := knowledge.Query(ctx, "alice private notes", 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("query leaked across collections: %+v", results)
	}
}
