package faqkb

import (
	"errors"
	"fmt"
	"time"
)

// EmbeddingDim is the fixed dimensionality agreed with the embedding
// provider. The vector columns in the knowledge store are created with the
// same size.
const EmbeddingDim = 384

var (
	// ErrDocumentNotFound is returned when an operation references a
	// document id that is not in the knowledge store.
	ErrDocumentNotFound = errors.New("document not found")
)

// Document is one ingested source artifact, e.g. an uploaded FAQ file.
// Documents are created on ingestion, never mutated, and deleted explicitly
// together with their FAQ entries.
type Document struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// FAQInput is one question/answer pair as it arrives from an upload, before
// embeddings exist.
type FAQInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Entry is one FAQ row ready for persistence, with embeddings computed.
type Entry struct {
	Question          string
	Answer            string
	QuestionEmbedding []float32
	AnswerEmbedding   []float32
}

// IndexResult reports the outcome of one ingestion batch.
type IndexResult struct {
	DocumentID   int64  `json:"document_id,omitempty"`
	IndexedCount int    `json:"indexed_count"`
	Message      string `json:"message"`
}

// DeleteResult reports a completed document deletion.
type DeleteResult struct {
	Name     string `json:"name"`
	FAQCount int64  `json:"faq_count"`
}

// ClearResult reports a completed wipe of the knowledge store.
type ClearResult struct {
	DeletedDocuments int64 `json:"deleted_documents"`
	DeletedFAQs      int64 `json:"deleted_faqs"`
}

// Stats holds corpus-level counters.
type Stats struct {
	TotalDocuments int64 `json:"total_documents"`
	TotalFAQs      int64 `json:"total_faqs"`
}

// FormatSize renders a byte count the way the document listing shows it.
func FormatSize(sizeBytes int64) string {
	switch {
	case sizeBytes < 1024:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(sizeBytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/(1024*1024))
	}
}
