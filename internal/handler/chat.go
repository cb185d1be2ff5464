package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paperdex/paperdex/internal/retrieval"
	"github.com/paperdex/paperdex/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	Question string            `json:"question" binding:"required"`
	TopK     int               `json:"top_k"`
	Filters  retrieval.Filters `json:"filters"`
}

// Ask answers a question over the indexed documents with inline citations.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	resp, err := h.svc.Ask(c.Request.Context(), req.Question, req.Filters, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
