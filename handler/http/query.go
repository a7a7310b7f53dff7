package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"faqrag/src/core/queryrewrite"
	"faqrag/src/log"
)

type queryRequest struct {
	Query       string                `json:"query" binding:"required"`
	DocumentID  int64                 `json:"documentId" binding:"required"`
	ChatHistory []queryrewrite.Message `json:"chatHistory"`
}

// Query handles POST /api/query. The answer is streamed as plain text
// chunks; closing the connection cancels generation.
func (h *Handler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	requestID := uuid.New().String()
	ctx := c.Request.Context()

	out, err := h.pipeline.Query(ctx, req.Query, req.DocumentID, req.ChatHistory)
	if err != nil {
		log.Error(err, "query pipeline failed", "request_id", requestID)
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Request-Id", requestID)
	c.Status(http.StatusOK)

	for token := range out.Stream.Tokens() {
		if _, err := c.Writer.WriteString(token); err != nil {
			// Client went away; the request context cancels the stream.
			break
		}
		c.Writer.Flush()
	}

	if m := out.Stream.Metrics(); m != nil {
		log.Info("generation finished",
			"request_id", requestID,
			"prompt_tokens", m.PromptTokens,
			"output_tokens", m.OutputTokens,
			"total_duration", m.TotalDuration,
			"eval_duration", m.EvalDuration,
			"chunks", len(out.Chunks))
	}
	if err := out.Stream.Err(); err != nil {
		log.Error(err, "answer stream ended with error", "request_id", requestID)
	}
}
