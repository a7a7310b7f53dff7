package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"faqrag/src/core/faqkb"
	"faqrag/src/log"
)

// Upload handles POST /api/upload. CSV uploads are parsed as question/answer
// pairs; anything else is treated as plain text and chunked.
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("file upload required: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	ctx := c.Request.Context()
	filename := header.Filename
	sizeBytes := int64(len(data))

	var result *faqkb.IndexResult
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		faqs, err := faqkb.ParseFAQCSV(strings.NewReader(string(data)))
		if err != nil {
			sendError(c, http.StatusBadRequest, err)
			return
		}
		result, err = h.pipeline.IndexFAQs(ctx, filename, sizeBytes, faqs)
		if err != nil {
			sendError(c, http.StatusInternalServerError, err)
			return
		}
	} else {
		result, err = h.pipeline.IndexText(ctx, filename, sizeBytes, string(data))
		if err != nil {
			sendError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if h.sources != nil && result.DocumentID != 0 {
		if err := h.sources.ArchiveSource(ctx, result.DocumentID, filename, data); err != nil {
			// The entries are indexed; a missing archive copy is not
			// worth failing the upload over.
			log.Error(err, "failed to archive uploaded source", "document_id", result.DocumentID)
		}
	}

	sendJSON(c, http.StatusCreated, result)
}

type documentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UploadedAt string `json:"uploadedAt"`
	Size       string `json:"size"`
}

// ListDocuments handles GET /api/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentResponse{
			ID:         strconv.FormatInt(doc.ID, 10),
			Name:       doc.Name,
			UploadedAt: doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Size:       faqkb.FormatSize(doc.SizeBytes),
		})
	}

	sendJSON(c, http.StatusOK, out)
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *Handler) DeleteDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("invalid document id: %w", err))
		return
	}

	ctx := c.Request.Context()
	result, err := h.store.DeleteDocument(ctx, id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	if h.sources != nil {
		if err := h.sources.RemoveSource(ctx, id); err != nil {
			log.Error(err, "failed to remove archived source", "document_id", id)
		}
	}

	sendJSON(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("document %q with %d FAQ(s) deleted", result.Name, result.FAQCount),
	})
}

// ClearDocuments handles DELETE /api/documents
func (h *Handler) ClearDocuments(c *gin.Context) {
	result, err := h.store.ClearAll(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, result)
}

// Stats handles GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, stats)
}
