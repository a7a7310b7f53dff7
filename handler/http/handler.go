package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"faqrag/src/core/faqkb"
	"faqrag/src/storage/minioctrl"
)

// Handler serves the FAQ RAG API: ingestion uploads, the query endpoint and
// document bookkeeping.
type Handler struct {
	pipeline *faqkb.Pipeline
	store    faqkb.Store
	sources  *minioctrl.SourceService // optional, nil disables archiving
}

func NewHandler(pipeline *faqkb.Pipeline, store faqkb.Store, sources *minioctrl.SourceService) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		sources:  sources,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/upload", h.Upload)
	api.POST("/query", h.Query)

	api.GET("/documents", h.ListDocuments)
	api.DELETE("/documents/:id", h.DeleteDocument)
	api.DELETE("/documents", h.ClearDocuments)

	api.GET("/stats", h.Stats)
	api.GET("/health", h.CheckHealth)
}

// CheckHealth handles GET /api/health
func (h *Handler) CheckHealth(c *gin.Context) {
	sendJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, err error) {
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, faqkb.ErrDocumentNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	case status == http.StatusBadRequest:
		code = "BAD_REQUEST"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
