package faqkb

import (
	"context"
	"fmt"
)

// DefaultTopK is how many nearest answers retrieval asks for when not
// configured otherwise.
const DefaultTopK = 5

// RetrievalService turns an optimized query into a ranked list of answer
// texts scoped to one document. The query is embedded exactly once per call.
type RetrievalService struct {
	embedder Embedder
	store    Store
	topK     int
}

func NewRetrievalService(embedder Embedder, store Store, topK int) *RetrievalService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve returns up to topK answer texts of the given document, closest
// first. An empty result is a valid outcome meaning no grounding is
// available, not a fault. Provider and store errors propagate to the caller.
func (s *RetrievalService) Retrieve(ctx context.Context, optimizedQuery string, documentID int64) ([]string, error) {
	embedding, err := s.embedder.Embed(ctx, optimizedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	answers, err := s.store.NearestAnswers(ctx, documentID, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}

	return answers, nil
}
