package faqkb_test

import (
	"context"
	"math"
	"testing"

	"faqrag/src/core/faqkb"
)

func TestFallbackEmbedderPassesThroughOnSuccess(t *testing.T) {
	inner := &fakeEmbedder{}
	embedder := faqkb.NewFallbackEmbedder(inner)

	vec, err := embedder.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if vec[0] != float32(len("hello")) {
		t.Error("inner embedder's vector was not returned")
	}
}

func TestFallbackEmbedderDeterministicOnFailure(t *testing.T) {
	embedder := faqkb.NewFallbackEmbedder(&fakeEmbedder{err: errProviderDown})

	first, err := embedder.Embed(context.Background(), "refund policy")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	second, err := embedder.Embed(context.Background(), "refund policy")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}

	if len(first) != faqkb.EmbeddingDim {
		t.Fatalf("fallback vector has %d dimensions, want %d", len(first), faqkb.EmbeddingDim)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("fallback vectors differ at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestFallbackEmbedderDifferentTextsDiffer(t *testing.T) {
	embedder := faqkb.NewFallbackEmbedder(&fakeEmbedder{err: errProviderDown})

	a, _ := embedder.Embed(context.Background(), "refund policy")
	b, _ := embedder.Embed(context.Background(), "password reset")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical fallback vectors")
	}
}

func TestFallbackVectorIsUnitLength(t *testing.T) {
	embedder := faqkb.NewFallbackEmbedder(&fakeEmbedder{err: errProviderDown})

	vec, err := embedder.Embed(context.Background(), "storage limits")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1) > 1e-3 {
		t.Errorf("fallback vector norm = %v, want 1", norm)
	}
}

func TestFallbackEmbedderBatch(t *testing.T) {
	fallback := faqkb.NewFallbackEmbedder(&fakeEmbedder{err: errProviderDown})

	batch, err := fallback.EmbedBatch(context.Background(), []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d vectors, want 2", len(batch))
	}

	// Batch fallback matches the single-text fallback for the same input.
	single, err := fallback.Embed(context.Background(), "q1")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	for i := range single {
		if batch[0][i] != single[i] {
			t.Fatalf("batch and single fallback differ at index %d", i)
		}
	}
}

func TestFallbackEmbedderRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := faqkb.NewFallbackEmbedder(&fakeEmbedder{err: errProviderDown})
	if _, err := embedder.Embed(ctx, "q"); err == nil {
		t.Fatal("expected context error, got fallback vector")
	}
}
