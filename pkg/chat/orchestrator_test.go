package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
)

type fakeCatalog struct {
	loaded bool
}

func (f *fakeCatalog) Loaded() bool                       { return f.loaded }
func (f *fakeCatalog) DefaultChatModel() (string, string) { return "test-model", "test-provider" }
func (f *fakeCatalog) DocumentChatModel() string          { return "doc-model" }
func (f *fakeCatalog) DefaultImageModel() string          { return "image-model" }
func (f *fakeCatalog) MaxTokens() int                     { return 1024 }

type toast struct {
	level, title, message string
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (f *fakeNotifier) Success(title, message string) { f.record("success", title, message) }
func (f *fakeNotifier) Error(title, message string)   { f.record("error", title, message) }
func (f *fakeNotifier) Info(title, message string)    { f.record("info", title, message) }

func (f *fakeNotifier) record(level, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, toast{level, title, message})
}

func (f *fakeNotifier) count(level string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.toasts {
		if t.level == level {
			n++
		}
	}
	return n
}

type fakeChatBackend struct {
	mu       sync.Mutex
	requests []*Request
	outcome  *Outcome
	err      error
	block    chan struct{} // when set, Send blocks until closed
}

func (f *fakeChatBackend) Send(ctx context.Context, req *Request) (*Outcome, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeChatBackend) lastRequest() *Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type fakeMediaBackend struct {
	mu     sync.Mutex
	calls  int
	result *MediaResult
	err    error
}

func (f *fakeMediaBackend) GenerateImage(ctx context.Context, req *MediaRequest) (*MediaResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStream struct {
	deltas []*Delta
	pos    int
	closed bool
}

func (f *fakeStream) Recv() (*Delta, error) {
	if f.pos >= len(f.deltas) {
		return nil, io.EOF
	}
	d := f.deltas[f.pos]
	f.pos++
	return d, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	orch     *Orchestrator
	notifier *fakeNotifier
	chat     *fakeChatBackend
	media    *fakeMediaBackend
	flags    *MemoryFlags
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		notifier: &fakeNotifier{},
		chat:     &fakeChatBackend{},
		media:    &fakeMediaBackend{},
		flags:    NewMemoryFlags(),
	}
	h.orch = NewOrchestrator(uuid.New(), uuid.New(), "org-1", Deps{
		Catalog:  &fakeCatalog{loaded: true},
		Flags:    h.flags,
		Notifier: h.notifier,
		Chat:     h.chat,
		Media:    h.media,
	}, Timing{}, Callbacks{})
	return h
}

func completionOutcome(content string) *Outcome {
	return &Outcome{Completion: &Completion{
		Content: content,
		Model:   "test-model",
		Cost:    0.01,
		Usage:   &entity.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
}

func TestSendMessageEmptyRejected(t *testing.T) {
	h := newHarness(t)
	if _, err := h.orch.SendMessage(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
	if len(h.orch.Transcript()) != 0 {
		t.Errorf("transcript not empty after rejected send")
	}
}

func TestSendMessageCatalogNotLoaded(t *testing.T) {
	h := newHarness(t)
	h.orch.deps.Catalog = &fakeCatalog{loaded: false}
	if _, err := h.orch.SendMessage(context.Background(), "hi"); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("err = %v, want ErrCatalogNotLoaded", err)
	}
}

func TestSendMessageCompletionTurn(t *testing.T) {
	h := newHarness(t)
	h.chat.outcome = completionOutcome("Hello there, general answer.")

	result, err := h.orch.SendMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Mode != ModeText {
		t.Errorf("mode = %q, want text", result.Mode)
	}
	if result.Reply == nil || result.Reply.Content != "Hello there, general answer." {
		t.Fatalf("reply content not verbatim: %+v", result.Reply)
	}
	if result.Reply.Metadata == nil || result.Reply.Metadata.Model != "test-model" {
		t.Errorf("reply metadata missing model")
	}

	transcript := h.orch.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(transcript))
	}
	if transcript[0].Role != entity.ChatMessageRoleUser || transcript[1].Role != entity.ChatMessageRoleAssistant {
		t.Errorf("transcript roles wrong")
	}
	if h.orch.State() != StateIdle {
		t.Errorf("state = %q, want idle after turn", h.orch.State())
	}
	if h.orch.StreamBuffer() != "" {
		t.Errorf("stream buffer not cleared after turn")
	}
}

func TestSendMessageContentVerbatimDespiteReveal(t *testing.T) {
	h := newHarness(t)
	// Odd whitespace would be lost by a naive join of the revealed words.
	content := "line one\n\n  indented   line"
	h.chat.outcome = completionOutcome(content)

	result, err := h.orch.SendMessage(context.Background(), "go")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Reply.Content != content {
		t.Errorf("reply = %q, want original content verbatim", result.Reply.Content)
	}
}

func TestSendMessageFileCitations(t *testing.T) {
	h := newHarness(t)
	h.orch.AttachFile(&entity.AttachedFile{Name: "notes.txt", MimeType: "text/plain", Base64: "aGk="})
	h.chat.outcome = completionOutcome("Hi [notes.txt] there")

	result, err := h.orch.SendMessage(context.Background(), "what do my notes say")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Mode != ModeFileAnalysis {
		t.Errorf("mode = %q, want file-analysis", result.Mode)
	}
	if len(result.Citations) != 1 || result.Citations[0].Title != "notes.txt" {
		t.Fatalf("citations = %+v, want one for notes.txt", result.Citations)
	}
	// Attachments persist after the turn.
	if len(h.orch.Attachments()) != 1 {
		t.Errorf("attachments cleared after send")
	}
}

func TestSendMessageFilesBeatImageToggle(t *testing.T) {
	h := newHarness(t)
	h.flags.SetImageGeneration(true)
	h.orch.AttachFile(&entity.AttachedFile{Name: "doc.pdf", MimeType: "application/pdf", Base64: "cGRm"})
	h.chat.outcome = completionOutcome("analysis")

	result, err := h.orch.SendMessage(context.Background(), "")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Mode != ModeFileAnalysis {
		t.Errorf("mode = %q, want file-analysis", result.Mode)
	}
	if h.media.calls != 0 {
		t.Errorf("media backend called %d times, want 0", h.media.calls)
	}
}

func TestSendMessageImageTurn(t *testing.T) {
	h := newHarness(t)
	h.flags.SetImageGeneration(true)
	h.media.result = &MediaResult{URL: "https://x/y.png", Model: "image-model", Cost: 0.04}

	result, err := h.orch.SendMessage(context.Background(), "a red fox")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Mode != ModeImageGeneration {
		t.Errorf("mode = %q, want image-generation", result.Mode)
	}
	if result.Reply == nil || result.Reply.Content != "![Generated Image](https://x/y.png)" {
		t.Fatalf("reply = %+v, want markdown image", result.Reply)
	}
	if h.notifier.count("success") != 1 {
		t.Errorf("success toasts = %d, want 1", h.notifier.count("success"))
	}
	if h.chat.lastRequest() != nil {
		t.Errorf("chat backend called during image turn")
	}
}

func TestSendMessageImageFailureKeepsTranscriptClean(t *testing.T) {
	h := newHarness(t)
	h.flags.SetImageGeneration(true)
	h.media.err = errors.New("backend down")

	result, err := h.orch.SendMessage(context.Background(), "a red fox")
	if err != nil {
		t.Fatalf("SendMessage: %v, want nil (failure reported via toast)", err)
	}
	if result.Reply != nil {
		t.Errorf("reply = %+v, want nil", result.Reply)
	}
	if h.notifier.count("error") != 1 {
		t.Errorf("error toasts = %d, want 1", h.notifier.count("error"))
	}

	transcript := h.orch.Transcript()
	if len(transcript) != 1 || transcript[0].Role != entity.ChatMessageRoleUser {
		t.Errorf("transcript = %d messages, want only the user message", len(transcript))
	}
}

func TestSendMessageFileTurnSkipsThinkingDelay(t *testing.T) {
	h := newHarness(t)
	h.orch.timing = Timing{ThinkingMin: 2 * time.Second, ThinkingMax: 2 * time.Second}
	h.orch.AttachFile(&entity.AttachedFile{Name: "notes.txt", MimeType: "text/plain", Base64: "aGk="})
	h.chat.outcome = completionOutcome("analysis")

	start := time.Now()
	result, err := h.orch.SendMessage(context.Background(), "look at this")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Mode != ModeFileAnalysis {
		t.Errorf("mode = %q, want file-analysis", result.Mode)
	}
	if elapsed := time.Since(start); elapsed >= 2*time.Second {
		t.Errorf("file turn waited the thinking delay (%v)", elapsed)
	}
}

func TestSendMessageQuotaError(t *testing.T) {
	h := newHarness(t)
	h.chat.err = &QuotaError{Message: "limit reached"}

	_, err := h.orch.SendMessage(context.Background(), "hi")
	if err == nil {
		t.Fatalf("expected error")
	}
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("err = %v, want QuotaError", err)
	}
	if !h.flags.QuotaExhausted() {
		t.Errorf("quota flag not set")
	}
	if h.notifier.count("error") != 1 {
		t.Errorf("error toasts = %d, want 1", h.notifier.count("error"))
	}

	transcript := h.orch.Transcript()
	if len(transcript) != 1 {
		t.Errorf("transcript = %d messages, want only the user message", len(transcript))
	}
	if h.orch.State() != StateIdle {
		t.Errorf("state = %q, want idle", h.orch.State())
	}
}

func TestSendMessageAuthErrorSetsFlag(t *testing.T) {
	h := newHarness(t)
	h.chat.err = &AuthError{Message: "no key"}

	if _, err := h.orch.SendMessage(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error")
	}
	if !h.flags.APIKeyMissing() {
		t.Errorf("api-key flag not set")
	}
}

func TestSendMessageSingleFlight(t *testing.T) {
	h := newHarness(t)
	block := make(chan struct{})
	h.chat.block = block
	h.chat.outcome = completionOutcome("slow answer")

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := h.orch.SendMessage(context.Background(), "first")
		done <- err
	}()
	<-started

	// Wait until the first turn reaches the backend.
	for h.chat.lastRequest() == nil {
		time.Sleep(time.Millisecond)
	}

	if _, err := h.orch.SendMessage(context.Background(), "second"); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("err = %v, want ErrTurnInFlight", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
}

func TestSendMessageStreamTurn(t *testing.T) {
	h := newHarness(t)
	stream := &fakeStream{deltas: []*Delta{
		{Model: "stream-model", Content: "Hel"},
		{Content: "lo "},
		{Content: "[notes.txt]"},
	}}
	h.chat.outcome = &Outcome{Stream: stream}
	h.orch.AttachFile(&entity.AttachedFile{Name: "notes.txt", MimeType: "text/plain", Base64: "aGk="})

	result, err := h.orch.SendMessage(context.Background(), "stream it")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Reply.Content != "Hello [notes.txt]" {
		t.Errorf("reply = %q, want accumulated deltas", result.Reply.Content)
	}
	if result.Reply.Metadata.Model != "stream-model" {
		t.Errorf("model = %q, want stream-model", result.Reply.Metadata.Model)
	}
	if result.Reply.Metadata.Usage == nil || result.Reply.Metadata.Usage.TotalTokens != 0 {
		t.Errorf("stream usage should be zero, got %+v", result.Reply.Metadata.Usage)
	}
	if len(result.Citations) != 1 {
		t.Errorf("citations = %d, want 1", len(result.Citations))
	}
	if !stream.closed {
		t.Errorf("stream not closed")
	}
}

func TestSendMessageWebSearchRequest(t *testing.T) {
	h := newHarness(t)
	h.chat.outcome = completionOutcome("answer")

	if _, err := h.orch.SendMessage(context.Background(), "what is the latest news"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	req := h.chat.lastRequest()
	if req == nil || !req.Options.WebSearch.Enabled {
		t.Errorf("web search not enabled on outgoing request")
	}
}
