package chat

import (
	"fmt"
	"strings"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/entity"
)

const (
	defaultTemperature      = 0.0
	documentChatTemperature = 0.3
	webSearchMaxResults     = 5
	webSearchDepth          = "basic"
)

// TurnInput carries everything needed to assemble one outgoing request.
type TurnInput struct {
	History  []*entity.ChatMessage // prior transcript, excludes the current message
	UserText string
	Files    []*entity.AttachedFile

	Model          string
	Provider       string
	OrganizationId string
	MaxTokens      int

	WebSearch   bool
	VideoIntent bool

	DocumentChat      bool
	DocumentChatModel string
	DocumentContext   string
}

// BuildChatRequest assembles the request body: the citation-format system
// prompt, one synthetic system message per already-processed attached file,
// the prior transcript with unprocessed attachments inlined as base64, and
// the current user message under the same inlining rule.
func BuildChatRequest(in TurnInput) *Request {
	messages := []Message{{
		Role:    entity.ChatMessageRoleSystem,
		Content: constant.ChatSystemPromptV1,
	}}

	if in.VideoIntent {
		messages = append(messages, Message{
			Role:    entity.ChatMessageRoleSystem,
			Content: constant.VideoURLInstructionV1,
		})
	}

	for _, f := range in.Files {
		if f.IsProcessed && f.ProcessedText != "" {
			messages = append(messages, Message{
				Role:    entity.ChatMessageRoleSystem,
				Content: fmt.Sprintf(constant.FileContextMessageFormat, f.Name, f.ProcessedText),
			})
		}
	}

	for _, msg := range in.History {
		messages = append(messages, Message{
			Role:        msg.Role,
			Content:     msg.Content,
			Attachments: inlineAttachments(msg.AttachedFiles),
		})
	}

	messages = append(messages, Message{
		Role:        entity.ChatMessageRoleUser,
		Content:     in.UserText,
		Attachments: inlineAttachments(in.Files),
	})

	req := &Request{
		Messages:           messages,
		Model:              in.Model,
		Provider:           in.Provider,
		OrganizationId:     in.OrganizationId,
		StreamingEnabled:   true,
		Temperature:        defaultTemperature,
		MaxTokens:          in.MaxTokens,
		UseVercelOptimized: true,
		Options: RequestOptions{
			WebSearch: WebSearchOptions{
				Enabled:     in.WebSearch,
				MaxResults:  webSearchMaxResults,
				SearchDepth: webSearchDepth,
			},
		},
		DocumentContext: in.DocumentContext,
		DocumentChat:    in.DocumentChat,
	}

	if in.DocumentChat {
		req.Temperature = documentChatTemperature
		if in.DocumentChatModel != "" {
			req.Model = in.DocumentChatModel
		}
	}

	return req
}

// inlineAttachments converts unprocessed files into wire attachments. Files
// whose text is already extracted travel as system messages instead, so they
// are skipped here.
func inlineAttachments(files []*entity.AttachedFile) []Attachment {
	var attachments []Attachment
	for _, f := range files {
		if f.IsProcessed && f.ProcessedText != "" {
			continue
		}
		if f.Base64 == "" {
			continue
		}
		att := Attachment{
			Type:     CoarseFileType(f.MimeType),
			Data:     StripDataURIPrefix(f.Base64),
			Name:     f.Name,
			MimeType: f.MimeType,
			Size:     f.Size,
			Detail:   "auto",
		}
		if att.Type == "pdf" {
			att.PDFEngine = "pdf-text"
		}
		if len(f.Annotations) > 0 {
			att.Annotations = f.Annotations
		}
		attachments = append(attachments, att)
	}
	return attachments
}

// CoarseFileType buckets a MIME type into the three categories the backend
// understands.
func CoarseFileType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case mimeType == "application/pdf":
		return "pdf"
	default:
		return "file"
	}
}

// StripDataURIPrefix drops a leading "data:<mime>;base64," prefix if present.
func StripDataURIPrefix(b64 string) string {
	if !strings.HasPrefix(b64, "data:") {
		return b64
	}
	if i := strings.IndexByte(b64, ','); i >= 0 {
		return b64[i+1:]
	}
	return b64
}
