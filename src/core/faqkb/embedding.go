package faqkb

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"faqrag/src/log"
)

// FallbackEmbedder wraps an Embedder and degrades to deterministic
// pseudo-random unit vectors when the provider is unreachable. The fallback
// is seeded per input text, so re-encoding the same text always yields the
// identical vector. Ingestion uses this wrapper; the query path uses the raw
// embedder so retrieval failures stay visible to the caller.
type FallbackEmbedder struct {
	inner Embedder
	dim   int
}

func NewFallbackEmbedder(inner Embedder) *FallbackEmbedder {
	return &FallbackEmbedder{
		inner: inner,
		dim:   EmbeddingDim,
	}
}

func (e *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := e.inner.Embed(ctx, text)
	if err == nil {
		return embedding, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Error(err, "embedding provider unavailable, substituting deterministic fallback vector")
	return fallbackVector(text, e.dim), nil
}

func (e *FallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := e.inner.EmbedBatch(ctx, texts)
	if err == nil {
		return embeddings, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Error(err, "embedding provider unavailable, substituting deterministic fallback vectors", "count", len(texts))
	embeddings = make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = fallbackVector(text, e.dim)
	}
	return embeddings, nil
}

// fallbackVector derives a unit vector from the text alone. Seeding the
// generator with a hash of the input keeps the degraded mode idempotent.
func fallbackVector(text string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	raw := make([]float64, dim)
	var norm float64
	for i := range raw {
		raw[i] = rng.NormFloat64()
		norm += raw[i] * raw[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		raw[0] = 1
		norm = 1
	}

	vec := make([]float32, dim)
	for i := range raw {
		vec[i] = float32(raw[i] / norm)
	}
	return vec
}
