package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/repository"
	"github.com/paperdex/paperdex/internal/service"
)

type DocumentHandler struct {
	svc *service.IngestService
}

func NewDocumentHandler(svc *service.IngestService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload accepts a PDF, validates the requested OCR mode and queues
// ingestion. Identical content uploaded twice resolves to the existing
// document unless force=true.
func (h *DocumentHandler) Upload(c *gin.Context) {
	mode, err := extract.ParseOCRMode(c.DefaultPostForm("ocr_mode", c.Query("ocr_mode")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	force := c.DefaultPostForm("force", c.Query("force")) == "true"

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	if !isPDF(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), header.Filename, file, mode, force)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusAccepted
	if result.Status == service.UploadStatusExisting {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, total, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": docs,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Status reports a queued ingestion job's progress.
func (h *DocumentHandler) Status(c *gin.Context) {
	status, err := h.svc.JobStatus(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// isPDF trusts the declared content type; a .pdf filename alone is not
// enough to accept an upload.
func isPDF(contentType string) bool {
	return contentType == "application/pdf"
}
