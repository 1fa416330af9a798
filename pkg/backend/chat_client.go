package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/backend/streaming"
	"ai-docchat-be/pkg/chat"
)

const (
	enhancedChatPath = "/api/v1/ai/enhanced-chat"
	documentChatPath = "/api/v1/ai/document-chat"
)

// ChatClient talks to the chat-completion endpoints and normalizes both
// response shapes (single JSON object or SSE stream) into a chat.Outcome.
type ChatClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     logger.ILogger
}

var _ chat.ChatBackend = (*ChatClient)(nil)

func NewChatClient(baseURL, token string, log logger.ILogger) *ChatClient {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

// Send dispatches the request to enhanced-chat or document-chat and branches
// on the response Content-Type. The stream branch hands body ownership to
// the returned reader.
func (c *ChatClient) Send(ctx context.Context, req *chat.Request) (*chat.Outcome, error) {
	path := enhancedChatPath
	if req.DocumentChat {
		path = documentChatPath
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &chat.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, mapStatusError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		defer resp.Body.Close()
		completion, err := c.parseCompletion(resp.Body)
		if err != nil {
			return nil, err
		}
		return &chat.Outcome{Completion: completion}, nil
	}

	return &chat.Outcome{Stream: &chatStreamReader{
		scanner: streaming.NewSSEScanner(resp.Body),
		closer:  resp.Body,
		log:     c.log,
	}}, nil
}

// completionBody probes the documented locations for content, citations and
// annotations; the ad hoc shapes are normalized here so callers only ever
// see the canonical Completion.
type completionBody struct {
	Success  *bool   `json:"success"`
	Content  any     `json:"content"`
	Message  any     `json:"message"`
	Model    string  `json:"model"`
	Cost     float64 `json:"cost"`
	Latency  float64 `json:"latency"`
	Usage    *struct {
		PromptTokens     int `json:"promptTokens"`
		CompletionTokens int `json:"completionTokens"`
		TotalTokens      int `json:"totalTokens"`
	} `json:"usage"`
	Citations   []entity.Citation `json:"citations"`
	Annotations []any             `json:"annotations"`
	Metadata    *struct {
		Citations   []entity.Citation `json:"citations"`
		Annotations []any             `json:"annotations"`
	} `json:"metadata"`
	FileAnnotations []any `json:"fileAnnotations"`
}

func (c *ChatClient) parseCompletion(body io.Reader) (*chat.Completion, error) {
	var raw completionBody
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	if raw.Success != nil && !*raw.Success {
		return nil, fmt.Errorf("chat backend reported failure: %s", chat.EnsureStringContent(raw.Message))
	}

	content := chat.EnsureStringContent(raw.Content)
	if content == "" {
		content = chat.EnsureStringContent(raw.Message)
	}

	citations := raw.Citations
	if len(citations) == 0 && raw.Metadata != nil {
		citations = raw.Metadata.Citations
	}
	annotations := raw.Annotations
	if len(annotations) == 0 && raw.Metadata != nil {
		annotations = raw.Metadata.Annotations
	}
	if len(raw.FileAnnotations) > 0 {
		annotations = append(annotations, raw.FileAnnotations...)
	}

	completion := &chat.Completion{
		Content:     content,
		Model:       raw.Model,
		Cost:        raw.Cost,
		Latency:     raw.Latency,
		Citations:   citations,
		Annotations: annotations,
	}
	if raw.Usage != nil {
		completion.Usage = &entity.TokenUsage{
			PromptTokens:     raw.Usage.PromptTokens,
			CompletionTokens: raw.Usage.CompletionTokens,
			TotalTokens:      raw.Usage.TotalTokens,
		}
	}
	return completion, nil
}

// chatStreamReader yields deltas from an SSE body. A malformed data line is
// skipped, never aborting the stream.
type chatStreamReader struct {
	scanner *streaming.SSEScanner
	closer  io.Closer
	log     logger.ILogger
}

type streamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content any `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (r *chatStreamReader) Recv() (*chat.Delta, error) {
	for {
		data, err := r.scanner.Next()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &chat.NetworkError{Err: err}
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			r.log.Warn("ChatClient", "Skipping malformed stream chunk", map[string]interface{}{"error": err.Error()})
			continue
		}

		delta := &chat.Delta{Model: chunk.Model}
		if len(chunk.Choices) > 0 {
			delta.Content = chat.EnsureStringContent(chunk.Choices[0].Delta.Content)
		}
		return delta, nil
	}
}

func (r *chatStreamReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
