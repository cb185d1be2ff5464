package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paperdex/paperdex/internal/service"
)

type SummaryHandler struct {
	svc *service.SummaryService
}

func NewSummaryHandler(svc *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Summarize returns a structured summary of one indexed document.
func (h *SummaryHandler) Summarize(c *gin.Context) {
	docID := c.Param("id")

	summary, err := h.svc.Summarize(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, service.ErrNoIndexedContent) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no indexed content for document"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"doc_id": docID, "summary": summary})
}
