package chat

import (
	"context"

	"ai-docchat-be/internal/entity"
)

// Message is one entry of the outgoing request transcript.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment carries inlined file bytes for messages whose files have not
// been text-extracted yet. Data is base64 without the data-URI prefix.
type Attachment struct {
	Type        string `json:"type"` // "image" | "pdf" | "file"
	Data        string `json:"data"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size"`
	Detail      string `json:"detail"`
	PDFEngine   string `json:"pdfEngine,omitempty"`
	Annotations []any  `json:"annotations,omitempty"`
}

type WebSearchOptions struct {
	Enabled     bool   `json:"enabled"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type RequestOptions struct {
	WebSearch WebSearchOptions `json:"webSearch"`
}

// Request is the assembled chat-completion request. DocumentChat selects the
// document-chat endpoint instead of enhanced-chat; it is not serialized.
type Request struct {
	Messages           []Message      `json:"messages"`
	Model              string         `json:"model"`
	Provider           string         `json:"provider"`
	OrganizationId     string         `json:"organizationId"`
	StreamingEnabled   bool           `json:"streamingEnabled"`
	Temperature        float64        `json:"temperature"`
	MaxTokens          int            `json:"maxTokens"`
	UseVercelOptimized bool           `json:"useVercelOptimized"`
	Options            RequestOptions `json:"options"`
	DocumentContext    string         `json:"documentContext,omitempty"`

	DocumentChat bool `json:"-"`
}

// Completion is the normalized non-streaming backend reply.
type Completion struct {
	Content     string
	Model       string
	Cost        float64
	Latency     float64
	Usage       *entity.TokenUsage
	Citations   []entity.Citation
	Annotations []any
}

// Delta is one streamed content fragment.
type Delta struct {
	Model   string
	Content string
}

// StreamReader yields deltas until io.EOF. Malformed chunks are skipped by
// the implementation, never surfaced.
type StreamReader interface {
	Recv() (*Delta, error)
	Close() error
}

// Outcome is the tagged result of one backend call: exactly one of Completion
// or Stream is set, decided by the response Content-Type.
type Outcome struct {
	Completion *Completion
	Stream     StreamReader
}

// ChatBackend dispatches an assembled request and normalizes the response.
type ChatBackend interface {
	Send(ctx context.Context, req *Request) (*Outcome, error)
}

type MediaRequest struct {
	Prompt string
	Model  string
}

type MediaResult struct {
	URL           string
	Model         string
	RevisedPrompt string
	Cost          float64
}

// MediaBackend generates an image for a prompt.
type MediaBackend interface {
	GenerateImage(ctx context.Context, req *MediaRequest) (*MediaResult, error)
}

// ModelCatalog exposes the models a turn may use. Send is refused until the
// catalog reports Loaded.
type ModelCatalog interface {
	Loaded() bool
	DefaultChatModel() (model string, provider string)
	DocumentChatModel() string
	DefaultImageModel() string
	MaxTokens() int
}

// Notifier is the toast surface. Every terminal turn outcome goes through it.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
	Info(title, message string)
}

// FeatureFlags carries the per-session user toggles plus the persistent error
// flags the orchestrator flips on quota/auth failures.
type FeatureFlags interface {
	ImageGeneration() bool
	DocumentChat() bool

	QuotaExhausted() bool
	SetQuotaExhausted(v bool)
	APIKeyMissing() bool
	SetAPIKeyMissing(v bool)
}
