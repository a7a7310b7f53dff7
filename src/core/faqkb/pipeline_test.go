package faqkb_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"faqrag/src/core/faqkb"
	"faqrag/src/core/queryrewrite"
)

func newTestPipeline(store *fakeStore, embedder *fakeEmbedder, llm *fakeLLM) *faqkb.Pipeline {
	return faqkb.NewPipeline(
		queryrewrite.NewRewriter(),
		faqkb.NewIndexingService(store, embedder, faqkb.IndexingConfig{}),
		faqkb.NewRetrievalService(embedder, store, 5),
		faqkb.NewGenerationService(llm, faqkb.GenerationConfig{}),
	)
}

func TestPipelineQuery(t *testing.T) {
	store := &fakeStore{answers: []string{"Open settings and click reset."}}
	embedder := &fakeEmbedder{}
	llm := &fakeLLM{tokens: []string{"Open ", "settings."}}
	pipeline := newTestPipeline(store, embedder, llm)

	out, err := pipeline.Query(context.Background(), "How do I reset my password?", 7, nil)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if out.Rewrite.OptimizedQuery == "" {
		t.Error("rewrite produced an empty optimized query")
	}
	if len(out.Chunks) != 1 {
		t.Errorf("got %d chunks, want 1", len(out.Chunks))
	}
	if got := drain(out.Stream); got != "Open settings." {
		t.Errorf("drained %q, want %q", got, "Open settings.")
	}

	// Retrieval embeds the optimized query, not the raw one.
	if len(embedder.embedCalls) != 1 || embedder.embedCalls[0] != out.Rewrite.OptimizedQuery {
		t.Errorf("embedded %v, want the optimized query %q", embedder.embedCalls, out.Rewrite.OptimizedQuery)
	}

	// The prompt carries the user's original wording.
	if !strings.Contains(llm.lastPrompt, "How do I reset my password?") {
		t.Errorf("prompt does not contain the original query: %q", llm.lastPrompt)
	}
}

func TestPipelineQueryEmptyRetrievalStillGenerates(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{tokens: []string{"I do not have enough information."}}
	pipeline := newTestPipeline(store, &fakeEmbedder{}, llm)

	out, err := pipeline.Query(context.Background(), "something unrelated?", 7, nil)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(out.Chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(out.Chunks))
	}
	if llm.streamStarts != 1 {
		t.Errorf("provider called %d times, want 1", llm.streamStarts)
	}
	drain(out.Stream)
}

func TestPipelineQueryRetrievalErrorPropagates(t *testing.T) {
	store := &fakeStore{searchErr: errProviderDown}
	llm := &fakeLLM{}
	pipeline := newTestPipeline(store, &fakeEmbedder{}, llm)

	_, err := pipeline.Query(context.Background(), "q?", 7, nil)
	if !errors.Is(err, errProviderDown) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
	if llm.streamStarts != 0 {
		t.Error("generation started despite retrieval failure")
	}
}

func TestPipelineQueryResolvesConversationContext(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{}
	pipeline := newTestPipeline(store, &fakeEmbedder{}, llm)

	history := []queryrewrite.Message{
		{Role: "user", Content: "How do I reset my password?"},
		{Role: "assistant", Content: "Open settings and click reset."},
	}
	out, err := pipeline.Query(context.Background(), "what about it?", 7, history)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if !out.Rewrite.ContextResolved {
		t.Error("follow-up query was not resolved against history")
	}
	if !strings.Contains(out.Rewrite.OptimizedQuery, "reset") {
		t.Errorf("optimized query %q lost the history topic", out.Rewrite.OptimizedQuery)
	}
	drain(out.Stream)
}

func TestPipelineIndexFAQsDelegates(t *testing.T) {
	store := &fakeStore{}
	pipeline := newTestPipeline(store, &fakeEmbedder{}, &fakeLLM{})

	res, err := pipeline.IndexFAQs(context.Background(), "faq.csv", 10, []faqkb.FAQInput{{Question: "q", Answer: "a"}})
	if err != nil {
		t.Fatalf("IndexFAQs returned error: %v", err)
	}
	if res.IndexedCount != 1 {
		t.Errorf("IndexedCount = %d, want 1", res.IndexedCount)
	}
}
