package chat

import (
	"strings"
	"testing"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/entity"
)

func TestBuildChatRequestBasics(t *testing.T) {
	req := BuildChatRequest(TurnInput{
		UserText:       "hello",
		Model:          "gpt-4o-mini",
		Provider:       "openai",
		OrganizationId: "org-1",
		MaxTokens:      2048,
	})

	if len(req.Messages) != 2 {
		t.Fatalf("got %d messages, want 2 (system + user)", len(req.Messages))
	}
	if req.Messages[0].Role != entity.ChatMessageRoleSystem || req.Messages[0].Content != constant.ChatSystemPromptV1 {
		t.Errorf("first message is not the system prompt")
	}
	if req.Messages[1].Role != entity.ChatMessageRoleUser || req.Messages[1].Content != "hello" {
		t.Errorf("last message is not the user text")
	}
	if req.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", req.Temperature)
	}
	if !req.StreamingEnabled || !req.UseVercelOptimized {
		t.Errorf("streaming/vercel flags not set")
	}
	if req.Options.WebSearch.Enabled {
		t.Errorf("web search enabled without detection")
	}
	if req.Options.WebSearch.MaxResults != 5 || req.Options.WebSearch.SearchDepth != "basic" {
		t.Errorf("web search defaults wrong: %+v", req.Options.WebSearch)
	}
}

func TestBuildChatRequestVideoInstruction(t *testing.T) {
	req := BuildChatRequest(TurnInput{
		UserText:    "find a video",
		Model:       "m",
		WebSearch:   true,
		VideoIntent: true,
	})

	if len(req.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(req.Messages))
	}
	if req.Messages[1].Content != constant.VideoURLInstructionV1 {
		t.Errorf("second message is not the video instruction")
	}
	if !req.Options.WebSearch.Enabled {
		t.Errorf("web search not enabled")
	}
}

func TestBuildChatRequestProcessedFiles(t *testing.T) {
	files := []*entity.AttachedFile{
		{Name: "notes.txt", IsProcessed: true, ProcessedText: "extracted body", MimeType: "text/plain", Base64: "aGk="},
		{Name: "raw.bin", MimeType: "application/octet-stream", Base64: "cmF3", Size: 3},
	}

	req := BuildChatRequest(TurnInput{UserText: "summarize", Files: files, Model: "m"})

	// system prompt + one file-context message + user message
	if len(req.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(req.Messages))
	}
	fileCtx := req.Messages[1]
	if fileCtx.Role != entity.ChatMessageRoleSystem {
		t.Errorf("file context role = %q, want system", fileCtx.Role)
	}
	if !strings.Contains(fileCtx.Content, "[notes.txt]") || !strings.Contains(fileCtx.Content, "extracted body") {
		t.Errorf("file context missing name or text: %q", fileCtx.Content)
	}

	// Only the unprocessed file is inlined on the user message.
	user := req.Messages[2]
	if len(user.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(user.Attachments))
	}
	if user.Attachments[0].Name != "raw.bin" || user.Attachments[0].Data != "cmF3" {
		t.Errorf("wrong inlined attachment: %+v", user.Attachments[0])
	}
	if user.Attachments[0].Detail != "auto" {
		t.Errorf("attachment detail = %q, want auto", user.Attachments[0].Detail)
	}
}

func TestBuildChatRequestPDFEngine(t *testing.T) {
	files := []*entity.AttachedFile{
		{Name: "doc.pdf", MimeType: "application/pdf", Base64: "cGRm"},
	}
	req := BuildChatRequest(TurnInput{UserText: "read this", Files: files, Model: "m"})
	user := req.Messages[len(req.Messages)-1]
	if len(user.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(user.Attachments))
	}
	att := user.Attachments[0]
	if att.Type != "pdf" || att.PDFEngine != "pdf-text" {
		t.Errorf("pdf attachment = %+v, want type pdf with pdf-text engine", att)
	}
}

func TestBuildChatRequestDocumentChatOverrides(t *testing.T) {
	req := BuildChatRequest(TurnInput{
		UserText:          "question",
		Model:             "default-model",
		DocumentChat:      true,
		DocumentChatModel: "doc-model",
	})
	if req.Model != "doc-model" {
		t.Errorf("model = %q, want doc-model", req.Model)
	}
	if req.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", req.Temperature)
	}
	if !req.DocumentChat {
		t.Errorf("DocumentChat not carried through")
	}
}

func TestBuildChatRequestHistoryOrder(t *testing.T) {
	history := []*entity.ChatMessage{
		{Role: entity.ChatMessageRoleUser, Content: "first"},
		{Role: entity.ChatMessageRoleAssistant, Content: "second"},
	}
	req := BuildChatRequest(TurnInput{History: history, UserText: "third", Model: "m"})

	var contents []string
	for _, m := range req.Messages[1:] {
		contents = append(contents, m.Content)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if contents[i] != w {
			t.Errorf("message %d = %q, want %q", i, contents[i], w)
		}
	}
}

func TestCoarseFileType(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", "image"},
		{"image/jpeg", "image"},
		{"application/pdf", "pdf"},
		{"text/plain", "file"},
		{"", "file"},
	}
	for _, tt := range tests {
		if got := CoarseFileType(tt.mime); got != tt.want {
			t.Errorf("CoarseFileType(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestStripDataURIPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data:image/png;base64,AAAA", "AAAA"},
		{"AAAA", "AAAA"},
		{"data:no-comma", "data:no-comma"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDataURIPrefix(tt.in); got != tt.want {
			t.Errorf("StripDataURIPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
