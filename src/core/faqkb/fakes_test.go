package faqkb_test

import (
	"context"
	"errors"

	"faqrag/src/core/faqkb"
)

// fakeEmbedder returns a fixed-size vector derived from the text length and
// records every call.
type fakeEmbedder struct {
	err        error
	embedCalls []string
	batchCalls [][]string
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.embedCalls = append(e.embedCalls, text)
	if e.err != nil {
		return nil, e.err
	}
	return fakeVector(text), nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls = append(e.batchCalls, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = fakeVector(t)
	}
	return out, nil
}

func fakeVector(text string) []float32 {
	vec := make([]float32, faqkb.EmbeddingDim)
	vec[0] = float32(len(text))
	return vec
}

// fakeStore records calls and serves canned results.
type fakeStore struct {
	answers        []string
	indexErr       error
	searchErr      error
	indexedDocs    []string
	indexedEntries [][]faqkb.Entry
	searchedDocIDs []int64
	searchedKs     []int
}

func (s *fakeStore) CreateDocument(ctx context.Context, name string, sizeBytes int64) (*faqkb.Document, error) {
	return &faqkb.Document{ID: 42, Name: name, SizeBytes: sizeBytes}, nil
}

func (s *fakeStore) InsertEntries(ctx context.Context, documentID int64, entries []faqkb.Entry) error {
	s.indexedEntries = append(s.indexedEntries, entries)
	return s.indexErr
}

func (s *fakeStore) IndexDocument(ctx context.Context, name string, sizeBytes int64, entries []faqkb.Entry) (*faqkb.Document, error) {
	if s.indexErr != nil {
		return nil, s.indexErr
	}
	s.indexedDocs = append(s.indexedDocs, name)
	s.indexedEntries = append(s.indexedEntries, entries)
	return &faqkb.Document{ID: 42, Name: name, SizeBytes: sizeBytes}, nil
}

func (s *fakeStore) NearestAnswers(ctx context.Context, documentID int64, embedding []float32, k int) ([]string, error) {
	s.searchedDocIDs = append(s.searchedDocIDs, documentID)
	s.searchedKs = append(s.searchedKs, k)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(s.answers) > k {
		return s.answers[:k], nil
	}
	return s.answers, nil
}

func (s *fakeStore) ListDocuments(ctx context.Context) ([]faqkb.Document, error) {
	return nil, nil
}

func (s *fakeStore) DeleteDocument(ctx context.Context, documentID int64) (*faqkb.DeleteResult, error) {
	return nil, faqkb.ErrDocumentNotFound
}

func (s *fakeStore) ClearAll(ctx context.Context) (*faqkb.ClearResult, error) {
	return &faqkb.ClearResult{}, nil
}

func (s *fakeStore) Stats(ctx context.Context) (*faqkb.Stats, error) {
	return &faqkb.Stats{}, nil
}

// fakeLLM records the prompts it was asked to answer and hands back a
// pre-built stream.
type fakeLLM struct {
	tokens       []string
	metrics      *faqkb.GenerationMetrics
	lastSystem   string
	lastPrompt   string
	lastTemp     float64
	streamStarts int
}

func (l *fakeLLM) GenerateStream(ctx context.Context, system, prompt string, temperature float64) faqkb.AnswerStream {
	l.lastSystem = system
	l.lastPrompt = prompt
	l.lastTemp = temperature
	l.streamStarts++

	ch := make(chan string, len(l.tokens))
	for _, tok := range l.tokens {
		ch <- tok
	}
	close(ch)
	return &fakeStream{tokens: ch, metrics: l.metrics}
}

type fakeStream struct {
	tokens  chan string
	metrics *faqkb.GenerationMetrics
	err     error
}

func (s *fakeStream) Tokens() <-chan string             { return s.tokens }
func (s *fakeStream) Metrics() *faqkb.GenerationMetrics { return s.metrics }
func (s *fakeStream) Err() error                        { return s.err }

var errProviderDown = errors.New("provider unreachable")

func drain(stream faqkb.AnswerStream) string {
	var out string
	for tok := range stream.Tokens() {
		out += tok
	}
	return out
}
