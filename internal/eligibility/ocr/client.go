// Package ocr turns uploaded document scans into extraction guesses. A
// sidecar service does the raw text recognition; the heuristics in this
// package map that text onto permit categories.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/pkg/config"
)

// JPEG, PNG and PDF magic bytes for upload validation
var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	pdfMagic  = []byte{0x25, 0x50, 0x44, 0x46}
)

// Client sends document scans to the recognition sidecar and maps its raw
// text output onto a structured extraction.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the recognition sidecar.
func NewClient(cfg *config.OCRConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout, // recognition can take 10-20s per scan
		},
	}
}

// Extract recognizes one document scan. The returned extraction always
// carries the source file name; recognition failures surface as errors so
// the caller can substitute an empty extraction and keep the batch going.
func (c *Client) Extract(ctx context.Context, fileName string, data []byte) (domain.DocumentExtraction, error) {
	if !isSupportedData(data) {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: %s is not a JPEG, PNG or PDF", fileName)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: close multipart writer: %w", err)
	}

	url := c.baseURL + "/api/v1/recognize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: recognition service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var recognized recognizeResponse
	if err := json.Unmarshal(respBody, &recognized); err != nil {
		return domain.DocumentExtraction{}, fmt.Errorf("ocr: parse response: %w", err)
	}

	return ParseText(fileName, recognized.Text), nil
}

// isSupportedData checks for JPEG, PNG or PDF magic bytes.
func isSupportedData(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return bytes.HasPrefix(data, jpegMagic) ||
		bytes.HasPrefix(data, pngMagic) ||
		bytes.HasPrefix(data, pdfMagic)
}

// recognizeResponse mirrors the sidecar's response model.
type recognizeResponse struct {
	Text             string `json:"text"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}
