package faqkb_test

import (
	"context"
	"errors"
	"testing"

	"faqrag/src/core/faqkb"
)

func TestRetrieveEmbedsQueryOnce(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{answers: []string{"a1", "a2"}}
	svc := faqkb.NewRetrievalService(embedder, store, 0)

	answers, err := svc.Retrieve(context.Background(), "reset password?", 7)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}

	if len(embedder.embedCalls) != 1 {
		t.Fatalf("query embedded %d times, want 1", len(embedder.embedCalls))
	}
	if embedder.embedCalls[0] != "reset password?" {
		t.Errorf("embedded %q, want the optimized query", embedder.embedCalls[0])
	}
	if len(store.searchedDocIDs) != 1 || store.searchedDocIDs[0] != 7 {
		t.Errorf("searched document ids %v, want [7]", store.searchedDocIDs)
	}
}

func TestRetrieveDefaultTopK(t *testing.T) {
	store := &fakeStore{}
	svc := faqkb.NewRetrievalService(&fakeEmbedder{}, store, 0)

	if _, err := svc.Retrieve(context.Background(), "q", 1); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(store.searchedKs) != 1 || store.searchedKs[0] != faqkb.DefaultTopK {
		t.Errorf("searched with k %v, want [%d]", store.searchedKs, faqkb.DefaultTopK)
	}
}

func TestRetrieveCapsResultsAtTopK(t *testing.T) {
	store := &fakeStore{answers: []string{"a1", "a2", "a3", "a4"}}
	svc := faqkb.NewRetrievalService(&fakeEmbedder{}, store, 2)

	answers, err := svc.Retrieve(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(answers) != 2 {
		t.Errorf("got %d answers, want 2", len(answers))
	}
}

func TestRetrieveEmptyResultIsValid(t *testing.T) {
	svc := faqkb.NewRetrievalService(&fakeEmbedder{}, &fakeStore{}, 5)

	answers, err := svc.Retrieve(context.Background(), "unrelated query", 1)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("got %d answers, want 0", len(answers))
	}
}

func TestRetrieveEmbedderErrorPropagates(t *testing.T) {
	embedder := &fakeEmbedder{err: errProviderDown}
	store := &fakeStore{}
	svc := faqkb.NewRetrievalService(embedder, store, 5)

	_, err := svc.Retrieve(context.Background(), "q", 1)
	if !errors.Is(err, errProviderDown) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
	if len(store.searchedDocIDs) != 0 {
		t.Error("store searched despite embedding failure")
	}
}

func TestRetrieveStoreErrorPropagates(t *testing.T) {
	store := &fakeStore{searchErr: errProviderDown}
	svc := faqkb.NewRetrievalService(&fakeEmbedder{}, store, 5)

	if _, err := svc.Retrieve(context.Background(), "q", 1); !errors.Is(err, errProviderDown) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}
