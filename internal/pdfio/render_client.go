package pdfio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RenderClient talks to the PDF render service, which rasterizes pages and
// runs native table detection.
type RenderClient struct {
	baseURL    string
	scale      float64
	httpClient *http.Client
}

// NewRenderClient creates a render service client. Scale 2 gives OCR enough
// resolution on typical paper layouts.
func NewRenderClient(baseURL string) *RenderClient {
	return &RenderClient{
		baseURL:    baseURL,
		scale:      2,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type renderRequest struct {
	Path  string  `json:"path"`
	Page  int     `json:"page"`
	Scale float64 `json:"scale,omitempty"`
}

// RenderPage returns the PNG raster of one page (1-based).
func (c *RenderClient) RenderPage(ctx context.Context, path string, page int) ([]byte, error) {
	body, err := c.post(ctx, "/v1/render", renderRequest{Path: path, Page: page, Scale: c.scale})
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return body, nil
}

type tablesResponse struct {
	Tables []RawTable `json:"tables"`
}

// PageTables returns the tables detected on one page (1-based).
func (c *RenderClient) PageTables(ctx context.Context, path string, page int) ([]RawTable, error) {
	body, err := c.post(ctx, "/v1/tables", renderRequest{Path: path, Page: page})
	if err != nil {
		return nil, fmt.Errorf("detect tables on page %d: %w", page, err)
	}
	var resp tablesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tables response: %w", err)
	}
	return resp.Tables, nil
}

func (c *RenderClient) post(ctx context.Context, endpoint string, reqBody renderRequest) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
