package faqkb

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"faqrag/src/log"
)

// IndexingConfig controls the plain-text chunking path.
type IndexingConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// IndexingService ingests FAQ batches into the knowledge store. Embeddings
// for all questions and all answers are computed in two batched calls before
// anything is written; the write itself is one transaction, so a reader never
// observes a document with partially-embedded entries.
type IndexingService struct {
	store    Store
	embedder Embedder
	cfg      IndexingConfig
}

func NewIndexingService(store Store, embedder Embedder, cfg IndexingConfig) *IndexingService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = defaultChunkOverlap
	}
	return &IndexingService{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
	}
}

// IndexFAQs ingests one batch of question/answer pairs under a new document.
// An empty batch is not an error; it reports zero indexed entries.
func (s *IndexingService) IndexFAQs(ctx context.Context, filename string, sizeBytes int64, faqs []FAQInput) (*IndexResult, error) {
	if len(faqs) == 0 {
		return &IndexResult{
			IndexedCount: 0,
			Message:      "no FAQ entries to index",
		}, nil
	}

	questions := make([]string, len(faqs))
	answers := make([]string, len(faqs))
	for i, faq := range faqs {
		questions[i] = faq.Question
		answers[i] = faq.Answer
	}

	questionEmbeddings, err := s.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("failed to embed questions: %w", err)
	}
	answerEmbeddings, err := s.embedder.EmbedBatch(ctx, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to embed answers: %w", err)
	}

	entries := make([]Entry, len(faqs))
	for i, faq := range faqs {
		entries[i] = Entry{
			Question:          faq.Question,
			Answer:            faq.Answer,
			QuestionEmbedding: questionEmbeddings[i],
			AnswerEmbedding:   answerEmbeddings[i],
		}
	}

	doc, err := s.store.IndexDocument(ctx, filename, sizeBytes, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}

	log.Info("indexed FAQ batch", "document_id", doc.ID, "name", filename, "count", len(entries))

	return &IndexResult{
		DocumentID:   doc.ID,
		IndexedCount: len(entries),
		Message:      fmt.Sprintf("successfully indexed %d FAQs from %q", len(entries), filename),
	}, nil
}

// IndexText chunks free-form text with a recursive character splitter and
// indexes each chunk as one entry, with the chunk text standing in for both
// question and answer.
func (s *IndexingService) IndexText(ctx context.Context, filename string, sizeBytes int64, content string) (*IndexResult, error) {
	if strings.TrimSpace(content) == "" {
		return &IndexResult{
			IndexedCount: 0,
			Message:      "no content to index",
		}, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.cfg.ChunkSize),
		textsplitter.WithChunkOverlap(s.cfg.ChunkOverlap),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	faqs := make([]FAQInput, len(chunks))
	for i, chunk := range chunks {
		faqs[i] = FAQInput{Question: chunk, Answer: chunk}
	}

	return s.IndexFAQs(ctx, filename, sizeBytes, faqs)
}

// ParseFAQCSV reads a `question,answer` CSV into FAQ inputs. The header row
// names the columns; their order does not matter. An empty file yields an
// empty batch.
func ParseFAQCSV(r io.Reader) ([]FAQInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	questionCol, answerCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return nil, fmt.Errorf("CSV must have question and answer columns, got %v", header)
	}

	var faqs []FAQInput
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if questionCol >= len(record) || answerCol >= len(record) {
			continue
		}
		faqs = append(faqs, FAQInput{
			Question: record[questionCol],
			Answer:   record[answerCol],
		})
	}

	return faqs, nil
}
