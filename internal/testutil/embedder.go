package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// FakeEmbedder implements ai.Embedder with deterministic vectors derived
// from the input text. Identical texts always embed to identical unit
// vectors, so exact-match similarity queries behave predictably without
// touching a real embedding API.
type FakeEmbedder struct{}

func (FakeEmbedder) Name() string { return "fake/test-embedder" }

func (FakeEmbedder) Register(api.Registry) {}

func (FakeEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	resp := &ai.EmbedResponse{Embeddings: make([]*ai.Embedding, len(req.Input))}
	for i, doc := range req.Input {
		var text string
		if len(doc.Content) > 0 {
			text = doc.Content[0].Text
		}
		resp.Embeddings[i] = &ai.Embedding{Embedding: deterministicVector(text)}
	}
	return resp, nil
}

// deterministicVector produces a unit vector seeded by the text's hash.
func deterministicVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) // #nosec G404 -- deterministic test data, not crypto

	v := make([]float32, vectorstore.VectorDimension)
	var norm float64
	for i := range v {
		v[i] = float32(rng.NormFloat64())
		norm += float64(v[i]) * float64(v[i])
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

var _ ai.Embedder = FakeEmbedder{}
