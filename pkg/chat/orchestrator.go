package chat

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// State is the turn lifecycle: Idle -> Thinking -> Loading ->
// Streaming -> Idle. Streaming covers both the real stream branch and the
// simulated reveal.
type State string

const (
	StateIdle      State = "idle"
	StateThinking  State = "thinking"
	StateLoading   State = "loading"
	StateStreaming State = "streaming"
)

// Timing holds the jittered delay bounds. Tests zero them out.
type Timing struct {
	ThinkingMin time.Duration
	ThinkingMax time.Duration

	RevealDelayMin time.Duration
	RevealDelayMax time.Duration
	RevealTickMin  time.Duration
	RevealTickMax  time.Duration

	ModelLabelClear time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		ThinkingMin:     1500 * time.Millisecond,
		ThinkingMax:     3000 * time.Millisecond,
		RevealDelayMin:  500 * time.Millisecond,
		RevealDelayMax:  1000 * time.Millisecond,
		RevealTickMin:   30 * time.Millisecond,
		RevealTickMax:   100 * time.Millisecond,
		ModelLabelClear: 2 * time.Second,
	}
}

// Callbacks are the side-effect hooks surfaced to the rest of the
// application. All are optional.
type Callbacks struct {
	OnState           func(State)
	OnStreamUpdate    func(buffer string)
	OnReveal          func(RevealUpdate)
	OnCitationsUpdate func([]entity.Citation)
	OnModelUsed       func(model string)
}

// Deps are the constructor-injected collaborators. Each is independently
// fakeable in tests.
type Deps struct {
	Catalog  ModelCatalog
	Flags    FeatureFlags
	Notifier Notifier
	Chat     ChatBackend
	Media    MediaBackend
	Logger   logger.ILogger
}

// TurnResult summarizes one finished turn.
type TurnResult struct {
	Mode      Mode
	Sent      *entity.ChatMessage
	Reply     *entity.ChatMessage
	Citations []entity.Citation
}

// Orchestrator drives one chat session's turns. It owns the transcript, the
// attached-file set, the streaming buffer and the current-model label; no
// other component writes them. One turn may be in flight at a time, enforced
// by the state machine rather than left to caller discipline.
type Orchestrator struct {
	mu           sync.Mutex
	state        State
	inFlight     bool
	transcript   []*entity.ChatMessage
	attached     []*entity.AttachedFile
	streamBuf    string
	currentModel string
	reveal       *revealTask
	labelTimer   *time.Timer

	sessionId      uuid.UUID
	userId         uuid.UUID
	organizationId string

	deps   Deps
	timing Timing
	cb     Callbacks
	rng    *rand.Rand
}

func NewOrchestrator(sessionId, userId uuid.UUID, organizationId string, deps Deps, timing Timing, cb Callbacks) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Orchestrator{
		state:          StateIdle,
		sessionId:      sessionId,
		userId:         userId,
		organizationId: organizationId,
		deps:           deps,
		timing:         timing,
		cb:             cb,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// State returns the current turn state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a snapshot of the finalized messages.
func (o *Orchestrator) Transcript() []*entity.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*entity.ChatMessage, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// AttachFile adds a file to the pending attachment set. Attachments persist
// across turns until explicitly cleared.
func (o *Orchestrator) AttachFile(f *entity.AttachedFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attached = append(o.attached, f)
}

// SetAttachments replaces the pending attachment set.
func (o *Orchestrator) SetAttachments(files []*entity.AttachedFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attached = files
}

// Attachments returns a snapshot of the pending attachment set.
func (o *Orchestrator) Attachments() []*entity.AttachedFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*entity.AttachedFile, len(o.attached))
	copy(out, o.attached)
	return out
}

// ClearAttachments empties the pending attachment set.
func (o *Orchestrator) ClearAttachments() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attached = nil
}

// Close cancels a running reveal and stops pending timers. Safe to call more
// than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	reveal := o.reveal
	if o.labelTimer != nil {
		o.labelTimer.Stop()
		o.labelTimer = nil
	}
	o.mu.Unlock()
	if reveal != nil {
		reveal.Cancel()
	}
}

// SendMessage runs one full turn: preprocess, route, dispatch, interpret the
// response and finalize the transcript. It blocks until the turn completes.
// No retries: every failure is terminal for the turn and reported through
// the Notifier, leaving the transcript with the user's message appended and
// no partial assistant message.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (*TurnResult, error) {
	trimmed := strings.TrimSpace(text)

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	if !o.deps.Catalog.Loaded() {
		o.mu.Unlock()
		return nil, ErrCatalogNotLoaded
	}
	files := make([]*entity.AttachedFile, len(o.attached))
	copy(files, o.attached)
	if trimmed == "" && len(files) == 0 {
		o.mu.Unlock()
		return nil, ErrEmptyMessage
	}
	o.inFlight = true
	o.mu.Unlock()

	defer o.finishTurn()

	content := LinkifyMediaURLs(trimmed)
	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          entity.ChatMessageRoleUser,
		Content:       content,
		ChatSessionId: o.sessionId,
		CreatedAt:     time.Now(),
		AttachedFiles: files,
	}
	o.appendMessage(userMsg)
	o.setState(StateThinking)

	mode := DecideMode(len(files) > 0, o.deps.Flags.ImageGeneration())
	o.deps.Logger.Info("ChatOrchestrator", "Turn started", map[string]interface{}{
		"session_id": o.sessionId.String(),
		"mode":       string(mode),
		"files":      len(files),
	})

	if mode == ModeImageGeneration {
		return o.runImageTurn(ctx, content, userMsg)
	}

	webSearch := false
	videoIntent := false
	if mode == ModeText {
		webSearch = DetectWebSearch(content)
		videoIntent = webSearch && DetectVideoIntent(content)
	}

	// UX pacing for plain text turns only; file analysis dispatches
	// immediately. The delay does not count toward any quota.
	if mode == ModeText {
		if err := o.wait(ctx, o.jitter(o.timing.ThinkingMin, o.timing.ThinkingMax)); err != nil {
			return nil, err
		}
	}
	o.setState(StateLoading)

	req := o.buildRequest(userMsg, content, files, webSearch, videoIntent)

	outcome, err := o.deps.Chat.Send(ctx, req)
	if err != nil {
		o.reportTurnError(err)
		return nil, err
	}

	if outcome.Stream != nil {
		return o.consumeStream(ctx, outcome.Stream, userMsg, files, mode)
	}
	return o.revealCompletion(ctx, outcome.Completion, userMsg, files, mode)
}

func (o *Orchestrator) buildRequest(userMsg *entity.ChatMessage, content string, files []*entity.AttachedFile, webSearch, videoIntent bool) *Request {
	model, provider := o.deps.Catalog.DefaultChatModel()

	o.mu.Lock()
	history := make([]*entity.ChatMessage, 0, len(o.transcript))
	for _, msg := range o.transcript {
		if msg.Id == userMsg.Id {
			continue
		}
		history = append(history, msg)
	}
	o.mu.Unlock()

	return BuildChatRequest(TurnInput{
		History:           history,
		UserText:          content,
		Files:             files,
		Model:             model,
		Provider:          provider,
		OrganizationId:    o.organizationId,
		MaxTokens:         o.deps.Catalog.MaxTokens(),
		WebSearch:         webSearch,
		VideoIntent:       videoIntent,
		DocumentChat:      o.deps.Flags.DocumentChat(),
		DocumentChatModel: o.deps.Catalog.DocumentChatModel(),
	})
}

// runImageTurn dispatches to the media backend. On failure the turn ends
// with a toast and no assistant message.
func (o *Orchestrator) runImageTurn(ctx context.Context, prompt string, userMsg *entity.ChatMessage) (*TurnResult, error) {
	result, err := o.deps.Media.GenerateImage(ctx, &MediaRequest{
		Prompt: prompt,
		Model:  o.deps.Catalog.DefaultImageModel(),
	})
	if err != nil {
		o.deps.Logger.Warn("ChatOrchestrator", "Image generation failed", map[string]interface{}{"error": err.Error()})
		var authErr *AuthError
		if errors.As(err, &authErr) {
			o.notify(func(n Notifier) { n.Error("Image generation", "Please sign in to generate images") })
		} else {
			o.notify(func(n Notifier) { n.Error("Image generation", "Failed to generate image") })
		}
		return &TurnResult{Mode: ModeImageGeneration, Sent: userMsg}, nil
	}

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          entity.ChatMessageRoleAssistant,
		Content:       "![Generated Image](" + result.URL + ")",
		ChatSessionId: o.sessionId,
		CreatedAt:     time.Now(),
		Metadata: &entity.MessageMetadata{
			Model: result.Model,
			Cost:  result.Cost,
		},
	}
	o.appendMessage(reply)
	o.notify(func(n Notifier) { n.Success("Image generated", "Your image is ready") })

	return &TurnResult{Mode: ModeImageGeneration, Sent: userMsg, Reply: reply}, nil
}

// consumeStream reads the SSE branch: accumulate deltas, update the live
// buffer after every chunk, then finalize directly; the chunk-by-chunk
// arrival already is the reveal.
func (o *Orchestrator) consumeStream(ctx context.Context, stream StreamReader, userMsg *entity.ChatMessage, files []*entity.AttachedFile, mode Mode) (*TurnResult, error) {
	defer stream.Close()
	o.setState(StateStreaming)

	var buf strings.Builder
	model := ""
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			o.reportTurnError(err)
			return nil, err
		}
		if model == "" && delta.Model != "" {
			model = delta.Model
			o.setCurrentModel(model)
		}
		buf.WriteString(delta.Content)
		o.setStreamBuffer(buf.String())
	}

	content := buf.String()
	citations := ExtractFileCitations(content, files)

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          entity.ChatMessageRoleAssistant,
		Content:       content,
		ChatSessionId: o.sessionId,
		CreatedAt:     time.Now(),
		Metadata: &entity.MessageMetadata{
			Model: model,
			// Usage/cost are not derivable from the stream; reported as zero.
			Usage:     &entity.TokenUsage{},
			Citations: citations,
		},
	}
	o.appendMessage(reply)
	o.publishCitations(citations)

	return &TurnResult{Mode: mode, Sent: userMsg, Reply: reply, Citations: citations}, nil
}

// revealCompletion runs the simulated word-by-word reveal over an already
// complete reply, then appends the final message with the original text
// verbatim.
func (o *Orchestrator) revealCompletion(ctx context.Context, comp *Completion, userMsg *entity.ChatMessage, files []*entity.AttachedFile, mode Mode) (*TurnResult, error) {
	citations := MergeCitations(comp.Citations, ExtractFileCitations(comp.Content, files))

	if comp.Model != "" {
		o.setCurrentModel(comp.Model)
	}
	o.setState(StateStreaming)

	task := newRevealTask()
	o.mu.Lock()
	if o.reveal != nil {
		prev := o.reveal
		o.mu.Unlock()
		prev.Cancel()
		o.mu.Lock()
	}
	o.reveal = task
	o.mu.Unlock()

	if err := o.wait(ctx, o.jitter(o.timing.RevealDelayMin, o.timing.RevealDelayMax)); err != nil {
		close(task.done)
		o.mu.Lock()
		o.reveal = nil
		o.mu.Unlock()
		return nil, err
	}

	completed := task.run(ctx, comp.Content, func() time.Duration {
		return o.jitter(o.timing.RevealTickMin, o.timing.RevealTickMax)
	}, func(u RevealUpdate) {
		o.setStreamBuffer(u.Visible)
		if o.cb.OnReveal != nil {
			o.cb.OnReveal(u)
		}
	})

	o.mu.Lock()
	o.reveal = nil
	o.mu.Unlock()

	if !completed {
		return nil, ErrTurnCancelled
	}

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          entity.ChatMessageRoleAssistant,
		Content:       comp.Content, // full original text, not the joined word buffer
		ChatSessionId: o.sessionId,
		CreatedAt:     time.Now(),
		Metadata: &entity.MessageMetadata{
			Model:       comp.Model,
			Cost:        comp.Cost,
			Usage:       comp.Usage,
			Citations:   citations,
			Annotations: comp.Annotations,
		},
	}
	o.appendMessage(reply)
	o.publishCitations(citations)

	return &TurnResult{Mode: mode, Sent: userMsg, Reply: reply, Citations: citations}, nil
}

// reportTurnError maps the error taxonomy to persistent flags and toasts.
// No retry is attempted for any class.
func (o *Orchestrator) reportTurnError(err error) {
	var (
		valErr   *ValidationError
		quotaErr *QuotaError
		authErr  *AuthError
		netErr   *NetworkError
		httpErr  *HTTPError
	)
	switch {
	case errors.As(err, &valErr):
		o.notify(func(n Notifier) { n.Error("Invalid request", valErr.FirstDetail()) })
	case errors.As(err, &quotaErr):
		o.deps.Flags.SetQuotaExhausted(true)
		o.notify(func(n Notifier) { n.Error("Usage limit reached", "Your AI usage quota is exhausted") })
	case errors.As(err, &authErr):
		o.deps.Flags.SetAPIKeyMissing(true)
		o.notify(func(n Notifier) { n.Error("API key not configured", "Configure an API key to keep chatting") })
	case errors.As(err, &netErr):
		o.notify(func(n Notifier) { n.Error("Connection problem", "Could not reach the AI service. Check your connection.") })
	case errors.As(err, &httpErr):
		o.notify(func(n Notifier) { n.Error("Chat failed", "The AI service returned an error") })
	default:
		o.notify(func(n Notifier) { n.Error("Chat failed", "Something went wrong processing your message") })
	}

	o.deps.Logger.Error("ChatOrchestrator", "Turn failed", map[string]interface{}{
		"session_id": o.sessionId.String(),
		"error":      err.Error(),
	})
}

// finishTurn always runs, success or failure: clear the in-flight guard and
// the stream buffer, return to Idle, and clear the current-model label after
// a short delay so the UI can show which model answered.
func (o *Orchestrator) finishTurn() {
	o.mu.Lock()
	o.inFlight = false
	o.streamBuf = ""
	hasModel := o.currentModel != ""
	o.mu.Unlock()

	o.setState(StateIdle)
	if o.cb.OnStreamUpdate != nil {
		o.cb.OnStreamUpdate("")
	}

	if !hasModel {
		return
	}
	if o.timing.ModelLabelClear <= 0 {
		o.clearCurrentModel()
		return
	}
	o.mu.Lock()
	if o.labelTimer != nil {
		o.labelTimer.Stop()
	}
	o.labelTimer = time.AfterFunc(o.timing.ModelLabelClear, o.clearCurrentModel)
	o.mu.Unlock()
}

func (o *Orchestrator) appendMessage(msg *entity.ChatMessage) {
	o.mu.Lock()
	o.transcript = append(o.transcript, msg)
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.cb.OnState != nil {
		o.cb.OnState(s)
	}
}

func (o *Orchestrator) setStreamBuffer(buf string) {
	o.mu.Lock()
	o.streamBuf = buf
	o.mu.Unlock()
	if o.cb.OnStreamUpdate != nil {
		o.cb.OnStreamUpdate(buf)
	}
}

// StreamBuffer returns the live streaming/reveal buffer.
func (o *Orchestrator) StreamBuffer() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.streamBuf
}

func (o *Orchestrator) setCurrentModel(model string) {
	o.mu.Lock()
	o.currentModel = model
	o.mu.Unlock()
	if o.cb.OnModelUsed != nil {
		o.cb.OnModelUsed(model)
	}
}

func (o *Orchestrator) clearCurrentModel() {
	o.mu.Lock()
	o.currentModel = ""
	o.mu.Unlock()
	if o.cb.OnModelUsed != nil {
		o.cb.OnModelUsed("")
	}
}

// CurrentModel returns the model label of the turn in progress, if any.
func (o *Orchestrator) CurrentModel() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentModel
}

func (o *Orchestrator) publishCitations(citations []entity.Citation) {
	if len(citations) > 0 && o.cb.OnCitationsUpdate != nil {
		o.cb.OnCitationsUpdate(citations)
	}
}

func (o *Orchestrator) notify(fn func(Notifier)) {
	if o.deps.Notifier != nil {
		fn(o.deps.Notifier)
	}
}

func (o *Orchestrator) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	o.mu.Lock()
	d := min + time.Duration(o.rng.Int63n(int64(max-min)))
	o.mu.Unlock()
	return d
}

func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
