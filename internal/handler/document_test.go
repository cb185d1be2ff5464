package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/internal/model"
	"github.com/paperdex/paperdex/internal/queue"
	"github.com/paperdex/paperdex/internal/service"
)

type stubRegistry struct{}

func (stubRegistry) Upsert(context.Context, *model.Document) error { return nil }

func (stubRegistry) Exists(context.Context, string) (bool, error) { return false, nil }

func (stubRegistry) FindByID(context.Context, string) (*model.Document, error) {
	return nil, fmt.Errorf("not found")
}

func (stubRegistry) List(context.Context, int, int) ([]model.Document, int64, error) {
	return nil, 0, nil
}

type stubQueue struct {
	enqueued int
}

func (s *stubQueue) Enqueue(context.Context, string, ...string) (string, error) {
	s.enqueued++
	return "job-1", nil
}

func (s *stubQueue) Status(context.Context, string) (*queue.JobStatus, error) {
	return &queue.JobStatus{Status: queue.StatusPending}, nil
}

func uploadRequest(t *testing.T, filename, contentType string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newUploadRouter(t *testing.T, q *stubQueue) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewIngestService(stubRegistry{}, q, t.TempDir(), 1<<20)
	h := NewDocumentHandler(svc)
	r := gin.New()
	r.POST("/documents", h.Upload)
	return r
}

func TestUploadRejectsNonPDFContentType(t *testing.T) {
	q := &stubQueue{}
	r := newUploadRouter(t, q)

	// A .pdf filename must not override the declared content type.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "paper.pdf", "text/plain"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only PDF files are supported")
	assert.Zero(t, q.enqueued)
}

func TestUploadAcceptsPDFContentType(t *testing.T) {
	q := &stubQueue{}
	r := newUploadRouter(t, q)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "paper.pdf", "application/pdf"))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, q.enqueued)
}

func TestUploadRejectsInvalidOCRMode(t *testing.T) {
	q := &stubQueue{}
	r := newUploadRouter(t, q)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/documents?ocr_mode=sometimes", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid ocr_mode")
	assert.Zero(t, q.enqueued)
}
