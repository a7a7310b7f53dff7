package faqkb

import (
	"context"

	"faqrag/src/core/queryrewrite"
	"faqrag/src/log"
)

// Pipeline composes Rewrite → Retrieve → Generate for one query and the
// ingestion path for uploads. The stages of a query run strictly in order;
// retrieval completes (or yields an empty result) before prompt assembly
// begins.
type Pipeline struct {
	rewriter   *queryrewrite.Rewriter
	indexing   *IndexingService
	retrieval  *RetrievalService
	generation *GenerationService
}

func NewPipeline(rewriter *queryrewrite.Rewriter, indexing *IndexingService, retrieval *RetrievalService, generation *GenerationService) *Pipeline {
	return &Pipeline{
		rewriter:   rewriter,
		indexing:   indexing,
		retrieval:  retrieval,
		generation: generation,
	}
}

// QueryOutput is everything one query produces besides the streamed answer
// itself: the rewrite trace and the retrieved grounding.
type QueryOutput struct {
	Rewrite queryrewrite.Result
	Chunks  []string
	Stream  AnswerStream
}

// Query answers one user query against one document. Retrieval errors
// propagate; an empty chunk list is passed on to generation, whose
// instruction template handles the out-of-scope refusal.
func (p *Pipeline) Query(ctx context.Context, query string, documentID int64, history []queryrewrite.Message) (*QueryOutput, error) {
	rewrite := p.rewriter.Rewrite(query, history)
	log.Debug("rewrote query",
		"original", rewrite.OriginalQuery,
		"optimized", rewrite.OptimizedQuery,
		"type", rewrite.QueryType,
		"context_resolved", rewrite.ContextResolved)

	chunks, err := p.retrieval.Retrieve(ctx, rewrite.OptimizedQuery, documentID)
	if err != nil {
		return nil, err
	}

	// Generation sees the original query, not the rewritten one.
	stream := p.generation.GenerateStream(ctx, query, chunks)

	return &QueryOutput{
		Rewrite: rewrite,
		Chunks:  chunks,
		Stream:  stream,
	}, nil
}

// IndexFAQs ingests a parsed FAQ batch under a new document.
func (p *Pipeline) IndexFAQs(ctx context.Context, filename string, sizeBytes int64, faqs []FAQInput) (*IndexResult, error) {
	return p.indexing.IndexFAQs(ctx, filename, sizeBytes, faqs)
}

// IndexText ingests free-form text by chunking it first.
func (p *Pipeline) IndexText(ctx context.Context, filename string, sizeBytes int64, content string) (*IndexResult, error) {
	return p.indexing.IndexText(ctx, filename, sizeBytes, content)
}
