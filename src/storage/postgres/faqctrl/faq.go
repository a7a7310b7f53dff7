package faqctrl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"faqrag/src/core/faqkb"
)

type Document struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null"`
	SizeBytes int64  `gorm:"not null"`
	CreatedAt time.Time
}

func (Document) TableName() string { return "documents" }

type FAQ struct {
	ID                int64           `gorm:"primaryKey;autoIncrement:false"`
	DocumentID        int64           `gorm:"not null"`
	QuestionText      string          `gorm:"not null"`
	AnswerText        string          `gorm:"not null"`
	QuestionEmbedding pgvector.Vector `gorm:"type:vector(384)"`
	AnswerEmbedding   pgvector.Vector `gorm:"type:vector(384)"`
	CreatedAt         time.Time
}

func (FAQ) TableName() string { return "faqs" }

// FAQService persists documents and FAQ entries in Postgres with pgvector
// columns. It implements faqkb.Store.
type FAQService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewFAQService(db *gorm.DB) (*FAQService, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &FAQService{
		db:        db,
		snowflake: node,
	}, nil
}

// migrations are raw statements because gorm's automigrate cannot express
// the pgvector extension or the ivfflat indexes. Every statement is
// idempotent, so the set is safe to run on each startup.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		size_bytes BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS faqs (
		id BIGINT PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		question_text TEXT NOT NULL,
		answer_text TEXT NOT NULL,
		question_embedding vector(384) NOT NULL,
		answer_embedding vector(384) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS faqs_qemb_idx
		ON faqs USING ivfflat (question_embedding vector_cosine_ops)
		WITH (lists = 100)`,
	`CREATE INDEX IF NOT EXISTS faqs_aemb_idx
		ON faqs USING ivfflat (answer_embedding vector_cosine_ops)
		WITH (lists = 100)`,
	`CREATE INDEX IF NOT EXISTS faqs_document_id_idx ON faqs (document_id)`,
}

// Migrate creates the schema. Safe to invoke on every startup.
func (s *FAQService) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

func (s *FAQService) CreateDocument(ctx context.Context, name string, sizeBytes int64) (*faqkb.Document, error) {
	doc, err := s.createDocument(s.db.WithContext(ctx), name, sizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %v", err)
	}
	return toDomainDocument(doc), nil
}

func (s *FAQService) InsertEntries(ctx context.Context, documentID int64, entries []faqkb.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.insertEntries(tx, documentID, entries)
	})
	if err != nil {
		return fmt.Errorf("failed to insert FAQ entries: %v", err)
	}
	return nil
}

func (s *FAQService) IndexDocument(ctx context.Context, name string, sizeBytes int64, entries []faqkb.Entry) (*faqkb.Document, error) {
	var doc Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.createDocument(tx, name, sizeBytes)
		if err != nil {
			return err
		}
		doc = created
		if len(entries) == 0 {
			return nil
		}
		return s.insertEntries(tx, doc.ID, entries)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index document: %v", err)
	}

	return toDomainDocument(doc), nil
}

func (s *FAQService) createDocument(tx *gorm.DB, name string, sizeBytes int64) (Document, error) {
	doc := Document{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		SizeBytes: sizeBytes,
	}
	if err := tx.Create(&doc).Error; err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *FAQService) insertEntries(tx *gorm.DB, documentID int64, entries []faqkb.Entry) error {
	return tx.CreateInBatches(s.toRows(documentID, entries), 100).Error
}

// NearestAnswers ranks the document's answers by cosine distance to the
// query embedding. The vector is bound as a query parameter, never
// interpolated into the SQL text.
func (s *FAQService) NearestAnswers(ctx context.Context, documentID int64, embedding []float32, k int) ([]string, error) {
	var answers []string
	result := s.db.WithContext(ctx).Raw(
		`SELECT answer_text FROM faqs WHERE document_id = ? ORDER BY answer_embedding <=> ? LIMIT ?`,
		documentID, pgvector.NewVector(embedding), k,
	).Scan(&answers)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query nearest answers: %v", result.Error)
	}
	return answers, nil
}

func (s *FAQService) ListDocuments(ctx context.Context) ([]faqkb.Document, error) {
	var docs []Document
	result := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&docs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list documents: %v", result.Error)
	}

	domainDocs := make([]faqkb.Document, 0, len(docs))
	for _, doc := range docs {
		domainDocs = append(domainDocs, *toDomainDocument(doc))
	}
	return domainDocs, nil
}

func (s *FAQService) DeleteDocument(ctx context.Context, documentID int64) (*faqkb.DeleteResult, error) {
	var doc Document
	result := s.db.WithContext(ctx).First(&doc, documentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, faqkb.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %v", result.Error)
	}

	var faqCount int64
	if err := s.db.WithContext(ctx).Model(&FAQ{}).Where("document_id = ?", documentID).Count(&faqCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count FAQ entries: %v", err)
	}

	// The faqs rows go with the document via ON DELETE CASCADE.
	if err := s.db.WithContext(ctx).Delete(&Document{}, documentID).Error; err != nil {
		return nil, fmt.Errorf("failed to delete document: %v", err)
	}

	return &faqkb.DeleteResult{
		Name:     doc.Name,
		FAQCount: faqCount,
	}, nil
}

func (s *FAQService) ClearAll(ctx context.Context) (*faqkb.ClearResult, error) {
	var docCount, faqCount int64
	if err := s.db.WithContext(ctx).Model(&Document{}).Count(&docCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents: %v", err)
	}
	if err := s.db.WithContext(ctx).Model(&FAQ{}).Count(&faqCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count FAQ entries: %v", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&FAQ{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&Document{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear documents: %v", err)
	}

	return &faqkb.ClearResult{
		DeletedDocuments: docCount,
		DeletedFAQs:      faqCount,
	}, nil
}

func (s *FAQService) Stats(ctx context.Context) (*faqkb.Stats, error) {
	var stats faqkb.Stats
	if err := s.db.WithContext(ctx).Model(&Document{}).Count(&stats.TotalDocuments).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents: %v", err)
	}
	if err := s.db.WithContext(ctx).Model(&FAQ{}).Count(&stats.TotalFAQs).Error; err != nil {
		return nil, fmt.Errorf("failed to count FAQ entries: %v", err)
	}
	return &stats, nil
}

func (s *FAQService) toRows(documentID int64, entries []faqkb.Entry) []FAQ {
	rows := make([]FAQ, len(entries))
	for i, entry := range entries {
		rows[i] = FAQ{
			ID:                s.snowflake.Generate().Int64(),
			DocumentID:        documentID,
			QuestionText:      entry.Question,
			AnswerText:        entry.Answer,
			QuestionEmbedding: pgvector.NewVector(entry.QuestionEmbedding),
			AnswerEmbedding:   pgvector.NewVector(entry.AnswerEmbedding),
		}
	}
	return rows
}

func toDomainDocument(doc Document) *faqkb.Document {
	return &faqkb.Document{
		ID:        doc.ID,
		Name:      doc.Name,
		SizeBytes: doc.SizeBytes,
		CreatedAt: doc.CreatedAt,
	}
}
