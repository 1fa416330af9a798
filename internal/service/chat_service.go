package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/catalog"
	"ai-docchat-be/pkg/chat"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionTitleMaxLen = 50

// TurnDelivery pushes live turn progress to the user's open sockets.
// Implemented by the websocket layer.
type TurnDelivery interface {
	State(userID uuid.UUID, sessionId string, state string)
	StreamDelta(userID uuid.UUID, sessionId string, buffer string)
	Reveal(userID uuid.UUID, sessionId string, update chat.RevealUpdate)
	Citations(userID uuid.UUID, sessionId string, citations []entity.Citation)
	ModelUsed(userID uuid.UUID, sessionId string, model string)
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetModels(ctx context.Context) (*dto.GetModelsResponse, error)
	GetFlags(ctx context.Context, userId, sessionId uuid.UUID) (*dto.GetFlagsResponse, error)
	UpdateFlags(ctx context.Context, userId uuid.UUID, req *dto.UpdateFlagsRequest) (*dto.GetFlagsResponse, error)
}

type chatService struct {
	sessionRepo    *memory.SessionRepository
	attachmentRepo *memory.AttachmentRepository
	catalog        *catalog.Catalog
	chatBackend    chat.ChatBackend
	mediaBackend   chat.MediaBackend
	natsPub        *pktNats.Publisher
	delivery       TurnDelivery
	timing         chat.Timing
	organizationId string
	logger         logger.ILogger
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	attachmentRepo *memory.AttachmentRepository,
	modelCatalog *catalog.Catalog,
	chatBackend chat.ChatBackend,
	mediaBackend chat.MediaBackend,
	natsPub *pktNats.Publisher,
	delivery TurnDelivery,
	timing chat.Timing,
	organizationId string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessionRepo:    sessionRepo,
		attachmentRepo: attachmentRepo,
		catalog:        modelCatalog,
		chatBackend:    chatBackend,
		mediaBackend:   mediaBackend,
		natsPub:        natsPub,
		delivery:       delivery,
		timing:         timing,
		organizationId: organizationId,
		logger:         log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	flags := chat.NewMemoryFlags()
	notifier := NewToastNotifier(userId, s.natsPub, s.logger)

	sessionId := session.Id.String()
	orchestrator := chat.NewOrchestrator(session.Id, userId, s.organizationId, chat.Deps{
		Catalog:  s.catalog,
		Flags:    flags,
		Notifier: notifier,
		Chat:     s.chatBackend,
		Media:    s.mediaBackend,
		Logger:   s.logger,
	}, s.timing, chat.Callbacks{
		OnState: func(state chat.State) {
			s.delivery.State(userId, sessionId, string(state))
		},
		OnStreamUpdate: func(buffer string) {
			s.delivery.StreamDelta(userId, sessionId, buffer)
		},
		OnReveal: func(u chat.RevealUpdate) {
			s.delivery.Reveal(userId, sessionId, u)
		},
		OnCitationsUpdate: func(citations []entity.Citation) {
			s.delivery.Citations(userId, sessionId, citations)
		},
		OnModelUsed: func(model string) {
			s.delivery.ModelUsed(userId, sessionId, model)
		},
	})

	s.sessionRepo.Save(&store.Runtime{
		Session:      session,
		Orchestrator: orchestrator,
		Flags:        flags,
	})

	s.logger.Info("ChatService", "Session created", map[string]interface{}{
		"session_id": sessionId,
		"user_id":    userId.String(),
	})

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error) {
	runtimes := s.sessionRepo.ListByUser(userId)
	out := make([]dto.GetAllSessionsResponse, 0, len(runtimes))
	for _, rt := range runtimes {
		out = append(out, dto.GetAllSessionsResponse{
			Id:        rt.Session.Id,
			Title:     rt.Session.Title,
			CreatedAt: rt.Session.CreatedAt,
			UpdatedAt: rt.Session.UpdatedAt,
		})
	}
	return out, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	runtime, err := s.ownedRuntime(userId, sessionId)
	if err != nil {
		return nil, err
	}

	transcript := runtime.Orchestrator.Transcript()
	messages := make([]dto.ChatMessageDTO, 0, len(transcript))
	for _, msg := range transcript {
		messages = append(messages, toChatMessageDTO(msg))
	}

	return &dto.GetChatHistoryResponse{
		ChatSessionId: sessionId,
		State:         string(runtime.Orchestrator.State()),
		Messages:      messages,
	}, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	runtime, err := s.ownedRuntime(userId, sessionId)
	if err != nil {
		return err
	}
	runtime.Orchestrator.Close()
	s.sessionRepo.Delete(sessionId.String())
	return nil
}

// SendChat runs one orchestrated turn. The call blocks until the reveal or
// stream finishes; live progress reaches the client over the websocket.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	runtime, err := s.ownedRuntime(userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	if len(req.FileIds) > 0 {
		files, err := s.resolveFiles(userId, req.FileIds)
		if err != nil {
			return nil, err
		}
		runtime.Orchestrator.SetAttachments(files)
	}

	result, err := runtime.Orchestrator.SendMessage(ctx, req.Chat)
	if err != nil {
		return nil, mapTurnError(err)
	}

	s.touchSession(runtime, req.Chat)

	if s.natsPub != nil && result.Reply != nil {
		model := ""
		if result.Reply.Metadata != nil {
			model = result.Reply.Metadata.Model
		}
		evt := events.NewTurnCompletedEvent(userId.String(), req.ChatSessionId.String(), model)
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
		}
	}

	resp := &dto.SendChatResponse{
		ChatSessionId: req.ChatSessionId,
		Mode:          string(result.Mode),
		Citations:     toCitationDTOs(result.Citations),
	}
	if result.Sent != nil {
		sent := toChatMessageDTO(result.Sent)
		resp.Sent = &sent
	}
	if result.Reply != nil {
		reply := toChatMessageDTO(result.Reply)
		resp.Reply = &reply
	}
	return resp, nil
}

func (s *chatService) GetModels(ctx context.Context) (*dto.GetModelsResponse, error) {
	defaultModel, _ := s.catalog.DefaultChatModel()
	entries := s.catalog.Entries()
	models := make([]dto.ModelEntryDTO, 0, len(entries))
	for _, e := range entries {
		models = append(models, dto.ModelEntryDTO{
			Model:    e.Model,
			Provider: e.Provider,
			Label:    e.Label,
		})
	}
	return &dto.GetModelsResponse{
		Loaded:       s.catalog.Loaded(),
		DefaultModel: defaultModel,
		Models:       models,
	}, nil
}

func (s *chatService) GetFlags(ctx context.Context, userId, sessionId uuid.UUID) (*dto.GetFlagsResponse, error) {
	runtime, err := s.ownedRuntime(userId, sessionId)
	if err != nil {
		return nil, err
	}
	return flagsToDTO(runtime.Flags), nil
}

func (s *chatService) UpdateFlags(ctx context.Context, userId uuid.UUID, req *dto.UpdateFlagsRequest) (*dto.GetFlagsResponse, error) {
	runtime, err := s.ownedRuntime(userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}
	if req.ImageGeneration != nil {
		runtime.Flags.SetImageGeneration(*req.ImageGeneration)
	}
	if req.DocumentChat != nil {
		runtime.Flags.SetDocumentChat(*req.DocumentChat)
	}
	return flagsToDTO(runtime.Flags), nil
}

func (s *chatService) ownedRuntime(userId, sessionId uuid.UUID) (*store.Runtime, error) {
	runtime, found := s.sessionRepo.Get(sessionId.String())
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "Chat session not found")
	}
	if runtime.Session.UserId != userId {
		return nil, fiber.NewError(fiber.StatusForbidden, "Chat session belongs to another user")
	}
	return runtime, nil
}

func (s *chatService) resolveFiles(userId uuid.UUID, fileIds []string) ([]*entity.AttachedFile, error) {
	files := make([]*entity.AttachedFile, 0, len(fileIds))
	for _, id := range fileIds {
		file, found := s.attachmentRepo.Get(id)
		if !found {
			return nil, fiber.NewError(fiber.StatusNotFound, "Attached file not found: "+id)
		}
		if file.UserId != userId {
			return nil, fiber.NewError(fiber.StatusForbidden, "Attached file belongs to another user")
		}
		files = append(files, file)
	}
	return files, nil
}

// touchSession titles the session from its first message and bumps the
// updated timestamp.
func (s *chatService) touchSession(runtime *store.Runtime, text string) {
	now := time.Now()
	runtime.Session.UpdatedAt = &now
	if runtime.Session.Title == "" {
		title := strings.TrimSpace(text)
		if len(title) > sessionTitleMaxLen {
			title = title[:sessionTitleMaxLen]
		}
		if title == "" {
			title = "New chat"
		}
		runtime.Session.Title = title
	}
	s.sessionRepo.Save(runtime)
}

func mapTurnError(err error) error {
	switch {
	case errors.Is(err, chat.ErrTurnInFlight):
		return fiber.NewError(fiber.StatusConflict, "A message is already being processed for this session")
	case errors.Is(err, chat.ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, "Message is empty")
	case errors.Is(err, chat.ErrCatalogNotLoaded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Models are not loaded yet")
	case errors.Is(err, chat.ErrTurnCancelled):
		return fiber.NewError(fiber.StatusConflict, "The turn was cancelled")
	}

	var (
		valErr   *chat.ValidationError
		quotaErr *chat.QuotaError
		authErr  *chat.AuthError
	)
	switch {
	case errors.As(err, &valErr):
		return fiber.NewError(fiber.StatusBadRequest, valErr.Message)
	case errors.As(err, &quotaErr):
		return fiber.NewError(fiber.StatusTooManyRequests, quotaErr.Message)
	case errors.As(err, &authErr):
		return fiber.NewError(fiber.StatusUnauthorized, authErr.Message)
	}
	return err
}

func flagsToDTO(flags *chat.MemoryFlags) *dto.GetFlagsResponse {
	return &dto.GetFlagsResponse{
		ImageGeneration: flags.ImageGeneration(),
		DocumentChat:    flags.DocumentChat(),
		QuotaExhausted:  flags.QuotaExhausted(),
		APIKeyMissing:   flags.APIKeyMissing(),
	}
}

func toChatMessageDTO(msg *entity.ChatMessage) dto.ChatMessageDTO {
	out := dto.ChatMessageDTO{
		Id:        msg.Id,
		Role:      msg.Role,
		Chat:      msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if msg.Metadata != nil {
		out.Model = msg.Metadata.Model
		out.Cost = msg.Metadata.Cost
		out.Citations = toCitationDTOs(msg.Metadata.Citations)
	}
	for _, f := range msg.AttachedFiles {
		out.Files = append(out.Files, toAttachedFileDTO(f))
	}
	return out
}

func toCitationDTOs(citations []entity.Citation) []dto.ChatCitationDTO {
	if len(citations) == 0 {
		return nil
	}
	out := make([]dto.ChatCitationDTO, 0, len(citations))
	for _, c := range citations {
		out = append(out, dto.ChatCitationDTO{
			URL:     c.URL,
			Title:   c.Title,
			Content: c.Content,
			Type:    c.Type,
		})
	}
	return out
}
