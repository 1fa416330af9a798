package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/chat"
)

const mediaPath = "/api/v1/ai/media"

// MediaClient talks to the media-generation endpoint.
type MediaClient struct {
	baseURL        string
	token          string
	organizationId string
	userId         string
	client         *http.Client
	log            logger.ILogger
}

var _ chat.MediaBackend = (*MediaClient)(nil)

func NewMediaClient(baseURL, token, organizationId, userId string, log logger.ILogger) *MediaClient {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MediaClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		organizationId: organizationId,
		userId:         userId,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

type mediaRequestBody struct {
	Prompt         string        `json:"prompt"`
	Type           string        `json:"type"`
	Model          string        `json:"model"`
	Quality        string        `json:"quality"`
	ResponseFormat string        `json:"responseFormat"`
	Count          int           `json:"count"`
	Metadata       mediaMetadata `json:"metadata"`
}

type mediaMetadata struct {
	OrganizationId string `json:"organizationId"`
	UserId         string `json:"userId"`
}

type mediaResponseBody struct {
	Success bool `json:"success"`
	Data    struct {
		Results []struct {
			URL  string `json:"url"`
			Data string `json:"data"`
		} `json:"results"`
		Usage *struct {
			Cost float64 `json:"cost"`
		} `json:"usage"`
		Metadata *struct {
			RevisedPrompt string `json:"revisedPrompt"`
		} `json:"metadata"`
		Model string `json:"model"`
	} `json:"data"`
	Message string `json:"message"`
}

// GenerateImage requests a single image for the prompt and returns its URL.
func (c *MediaClient) GenerateImage(ctx context.Context, req *chat.MediaRequest) (*chat.MediaResult, error) {
	body := mediaRequestBody{
		Prompt:         req.Prompt,
		Type:           "image",
		Model:          req.Model,
		Quality:        "auto",
		ResponseFormat: "url",
		Count:          1,
		Metadata: mediaMetadata{
			OrganizationId: c.organizationId,
			UserId:         c.userId,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal media request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+mediaPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create media request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &chat.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, mapStatusError(resp)
	}

	var parsed mediaResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode media response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("media backend reported failure: %s", parsed.Message)
	}
	if len(parsed.Data.Results) == 0 {
		return nil, fmt.Errorf("media backend returned no results")
	}

	result := &chat.MediaResult{
		URL:   parsed.Data.Results[0].URL,
		Model: parsed.Data.Model,
	}
	if parsed.Data.Usage != nil {
		result.Cost = parsed.Data.Usage.Cost
	}
	if parsed.Data.Metadata != nil {
		result.RevisedPrompt = parsed.Data.Metadata.RevisedPrompt
	}
	return result, nil
}
