package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	handlerhttp "faqrag/handler/http"
	"faqrag/src/core/faqkb"
)

// stubStore serves canned document-bookkeeping results; the pipeline routes
// are not under test here.
type stubStore struct {
	deleteResult *faqkb.DeleteResult
	deleteErr    error
	deletedIDs   []int64
}

func (s *stubStore) CreateDocument(ctx context.Context, name string, sizeBytes int64) (*faqkb.Document, error) {
	return nil, nil
}

func (s *stubStore) InsertEntries(ctx context.Context, documentID int64, entries []faqkb.Entry) error {
	return nil
}

func (s *stubStore) IndexDocument(ctx context.Context, name string, sizeBytes int64, entries []faqkb.Entry) (*faqkb.Document, error) {
	return nil, nil
}

func (s *stubStore) NearestAnswers(ctx context.Context, documentID int64, embedding []float32, k int) ([]string, error) {
	return nil, nil
}

func (s *stubStore) ListDocuments(ctx context.Context) ([]faqkb.Document, error) {
	return nil, nil
}

func (s *stubStore) DeleteDocument(ctx context.Context, documentID int64) (*faqkb.DeleteResult, error) {
	s.deletedIDs = append(s.deletedIDs, documentID)
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.deleteResult, nil
}

func (s *stubStore) ClearAll(ctx context.Context) (*faqkb.ClearResult, error) {
	return &faqkb.ClearResult{}, nil
}

func (s *stubStore) Stats(ctx context.Context) (*faqkb.Stats, error) {
	return &faqkb.Stats{}, nil
}

func newTestRouter(store faqkb.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlerhttp.NewHandler(nil, store, nil).RegisterRoutes(r)
	return r
}

func TestDeleteDocumentNotFound(t *testing.T) {
	store := &stubStore{deleteErr: faqkb.ErrDocumentNotFound}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", resp.Code)
	}

	if len(store.deletedIDs) != 1 || store.deletedIDs[0] != 123 {
		t.Errorf("deleted ids = %v, want [123]", store.deletedIDs)
	}
}

func TestDeleteDocument(t *testing.T) {
	store := &stubStore{deleteResult: &faqkb.DeleteResult{Name: "faq.csv", FAQCount: 3}}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "faq.csv") || !strings.Contains(body, "3") {
		t.Errorf("response %q does not report the deleted document", body)
	}
}

func TestDeleteDocumentInvalidID(t *testing.T) {
	store := &stubStore{}
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(store.deletedIDs) != 0 {
		t.Error("store reached with an unparseable id")
	}
}
