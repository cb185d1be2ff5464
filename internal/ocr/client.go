// Package ocr is the client for the OCR inference service. The service
// receives a page raster and returns recognized text as blocks of lines of
// words, in reading order.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Word struct {
	Value string `json:"value"`
}

type Line struct {
	Words []Word `json:"words"`
}

type Block struct {
	Lines []Line `json:"lines"`
}

// Page is the OCR output for one rendered page.
type Page struct {
	Blocks []Block `json:"blocks"`
}

// FlattenLines joins each recognized line's words and returns the lines in
// reading order: block by block, line by line.
func (p *Page) FlattenLines() []string {
	var lines []string
	for _, block := range p.Blocks {
		for _, line := range block.Lines {
			words := make([]string, 0, len(line.Words))
			for _, w := range line.Words {
				words = append(words, w.Value)
			}
			if text := strings.TrimSpace(strings.Join(words, " ")); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines
}

// Client recognizes text in a page image.
type Client interface {
	Infer(ctx context.Context, image []byte) (*Page, error)
}

// HTTPClient talks to the OCR inference sidecar. The model is loaded once by
// the sidecar process; this handle is constructed once per worker and
// injected into the pipeline.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}
}

func (c *HTTPClient) Infer(ctx context.Context, image []byte) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/infer", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr service error (status %d): %s", resp.StatusCode, string(body))
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ocr response: %w", err)
	}
	return &page, nil
}
