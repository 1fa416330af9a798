package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-docchat-be/pkg/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() *chat.Request {
	return &chat.Request{
		Messages: []chat.Message{{Role: "user", Content: "hi"}},
		Model:    "test-model",
	}
}

func TestChatClientJSONCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, enhancedChatPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"success": true,
			"content": "the answer",
			"model": "gpt-4o-mini",
			"cost": 0.002,
			"usage": {"promptTokens": 12, "completionTokens": 8, "totalTokens": 20},
			"metadata": {"citations": [{"title": "notes.txt", "url": "file://notes.txt"}]}
		}`)
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "tok", nil)
	outcome, err := client.Send(context.Background(), testRequest())
	require.NoError(t, err)
	require.NotNil(t, outcome.Completion)
	require.Nil(t, outcome.Stream)

	comp := outcome.Completion
	assert.Equal(t, "the answer", comp.Content)
	assert.Equal(t, "gpt-4o-mini", comp.Model)
	require.NotNil(t, comp.Usage)
	assert.Equal(t, 20, comp.Usage.TotalTokens)
	require.Len(t, comp.Citations, 1)
	assert.Equal(t, "notes.txt", comp.Citations[0].Title)
}

func TestChatClientContentAsParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content": ["part one ", "part two"]}`)
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "", nil)
	outcome, err := client.Send(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "part one part two", outcome.Completion.Content)
}

func TestChatClientDocumentChatPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content": "ok"}`)
	}))
	defer srv.Close()

	req := testRequest()
	req.DocumentChat = true
	client := NewChatClient(srv.URL, "", nil)
	_, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, documentChatPath, gotPath)
}

func TestChatClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "400 validation with details",
			status: http.StatusBadRequest,
			body:   `{"message": "bad request", "details": ["model is required", {"message": "messages empty"}]}`,
			check: func(t *testing.T, err error) {
				var valErr *chat.ValidationError
				require.ErrorAs(t, err, &valErr)
				assert.Equal(t, "model is required", valErr.FirstDetail())
				assert.Len(t, valErr.Details, 2)
			},
		},
		{
			name:   "429 quota",
			status: http.StatusTooManyRequests,
			body:   `{"error": "quota exceeded"}`,
			check: func(t *testing.T, err error) {
				var quotaErr *chat.QuotaError
				require.ErrorAs(t, err, &quotaErr)
				assert.Equal(t, "quota exceeded", quotaErr.Message)
			},
		},
		{
			name:   "401 auth",
			status: http.StatusUnauthorized,
			body:   `{"message": "no api key"}`,
			check: func(t *testing.T, err error) {
				var authErr *chat.AuthError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "500 generic",
			status: http.StatusInternalServerError,
			body:   `upstream blew up`,
			check: func(t *testing.T, err error) {
				var httpErr *chat.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
				assert.Equal(t, "upstream blew up", httpErr.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewChatClient(srv.URL, "", nil)
			_, err := client.Send(context.Background(), testRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestChatClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse the connection

	client := NewChatClient(srv.URL, "", nil)
	_, err := client.Send(context.Background(), testRequest())
	var netErr *chat.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestChatClientStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"model\": \"gpt-4o-mini\", \"choices\": [{\"delta\": {\"content\": \"Hel\"}}]}\n")
		io.WriteString(w, "data: not json at all\n")
		io.WriteString(w, "data: {\"choices\": [{\"delta\": {\"content\": \"lo\"}}]}\n")
		io.WriteString(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "", nil)
	outcome, err := client.Send(context.Background(), testRequest())
	require.NoError(t, err)
	require.NotNil(t, outcome.Stream)
	defer outcome.Stream.Close()

	var content string
	model := ""
	for {
		delta, err := outcome.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if model == "" {
			model = delta.Model
		}
		content += delta.Content
	}
	assert.Equal(t, "Hello", content, "malformed chunk should be skipped, not break the stream")
	assert.Equal(t, "gpt-4o-mini", model)
}

func TestChatClientBackendReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success": false, "message": "model unavailable"}`)
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "", nil)
	_, err := client.Send(context.Background(), testRequest())
	require.Error(t, err)
}
