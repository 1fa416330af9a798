package backend

import (
	"encoding/json"
	"io"
	"net/http"

	"ai-docchat-be/pkg/chat"
)

// errorBody is the shape the backend uses for non-2xx responses. Details may
// arrive as plain strings or as objects carrying a message.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details []json.RawMessage `json:"details"`
}

// mapStatusError converts a non-2xx response into the typed error taxonomy:
// 400 validation, 429 quota, 401 auth, everything else a generic HTTP error.
func mapStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = string(raw)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &chat.ValidationError{Message: message, Details: decodeDetails(body.Details)}
	case http.StatusTooManyRequests:
		return &chat.QuotaError{Message: message}
	case http.StatusUnauthorized:
		return &chat.AuthError{Message: message}
	default:
		return &chat.HTTPError{Status: resp.StatusCode, Message: message}
	}
}

func decodeDetails(raw []json.RawMessage) []string {
	var details []string
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			details = append(details, s)
			continue
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(r, &obj); err == nil && obj.Message != "" {
			details = append(details, obj.Message)
		}
	}
	return details
}
