package faqkb

import (
	"context"
	"time"
)

// Embedder defines operations for turning text into fixed-dimension vectors
type Embedder interface {
	// Embed generates an embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for a batch of texts in one call
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationMetrics carries the counters reported when a stream finishes.
type GenerationMetrics struct {
	PromptTokens  int           `json:"prompt_tokens"`
	OutputTokens  int           `json:"output_tokens"`
	TotalDuration time.Duration `json:"total_duration"`
	EvalDuration  time.Duration `json:"eval_duration"`
}

// AnswerStream is a lazy, finite, non-restartable sequence of answer tokens.
// Tokens become available as the provider emits them. Cancelling the context
// that produced the stream closes the underlying provider connection; the
// consumer must not rely on merely abandoning the channel.
type AnswerStream interface {
	// Tokens returns the channel of text fragments. It is closed when
	// generation finishes or fails.
	Tokens() <-chan string
	// Metrics returns the generation counters, or nil while the stream is
	// still live.
	Metrics() *GenerationMetrics
	// Err reports a terminal stream error. Only valid after Tokens closes.
	Err() error
}

// LLMProvider defines the streaming generation boundary
type LLMProvider interface {
	// GenerateStream produces an answer stream for the given system
	// instruction and user prompt. Provider connection failures surface as
	// a single readable token on the stream, never as a panic or an error
	// crossing the stream boundary.
	GenerateStream(ctx context.Context, system, prompt string, temperature float64) AnswerStream
}

// Store defines persistence operations for documents and FAQ entries
type Store interface {
	// CreateDocument inserts a document row. Duplicate names are allowed.
	CreateDocument(ctx context.Context, name string, sizeBytes int64) (*Document, error)
	// InsertEntries persists a batch of FAQ rows for one document in a
	// single transaction. On failure nothing of the batch is visible.
	InsertEntries(ctx context.Context, documentID int64, entries []Entry) error
	// IndexDocument creates the document and its entries in one
	// transaction, so a failed ingestion leaves no trace.
	IndexDocument(ctx context.Context, name string, sizeBytes int64, entries []Entry) (*Document, error)
	// NearestAnswers returns up to k answer texts of the given document,
	// ordered by ascending cosine distance to the query embedding.
	NearestAnswers(ctx context.Context, documentID int64, embedding []float32, k int) ([]string, error)
	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]Document, error)
	// DeleteDocument removes a document and, via the relationship
	// invariant, all its FAQ entries. Returns ErrDocumentNotFound for an
	// unknown id.
	DeleteDocument(ctx context.Context, documentID int64) (*DeleteResult, error)
	// ClearAll wipes every document and FAQ entry.
	ClearAll(ctx context.Context) (*ClearResult, error)
	// Stats returns corpus-level counters.
	Stats(ctx context.Context) (*Stats, error)
}
