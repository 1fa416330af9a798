package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ai-docchat-be/internal/pkg/logger"
)

// Client talks to the document extraction service. It posts raw file bytes
// and receives the extracted plain text.
type Client struct {
	baseURL string
	client  *http.Client
	log     logger.ILogger
}

func NewClient(baseURL string, log logger.ILogger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		log: log,
	}
}

type processResponse struct {
	Success  bool           `json:"success"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Error    string         `json:"error"`
}

// Result carries the extracted text plus the method the service used.
type Result struct {
	Content string
	Method  string
}

// Process uploads the file and returns its extracted text.
func (c *Client) Process(ctx context.Context, fileName string, data []byte) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", &body)
	if err != nil {
		return nil, fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed processResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}
	if !parsed.Success {
		if parsed.Error == "" {
			parsed.Error = "extraction failed"
		}
		return nil, fmt.Errorf("extractor error for %s: %s", fileName, parsed.Error)
	}

	result := &Result{Content: parsed.Content}
	if m, ok := parsed.Metadata["method"].(string); ok {
		result.Method = m
	}
	return result, nil
}
