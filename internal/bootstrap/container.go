package bootstrap

import (
	"context"
	"log"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/handler"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/backend"
	"ai-docchat-be/pkg/catalog"
	"ai-docchat-be/pkg/chat"
	"ai-docchat-be/pkg/extractor"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController       controller.IChatController
	AttachmentController controller.IAttachmentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. In-Memory Stores
	sessionRepo := memory.NewSessionRepository()
	attachmentRepo := memory.NewAttachmentRepository()

	// 4. Model Catalog
	modelCatalog := catalog.New()
	modelCatalog.Load(
		cfg.Models.ChatModel,
		cfg.Models.ChatProvider,
		cfg.Models.DocumentChatModel,
		cfg.Models.ImageModel,
		cfg.Models.MaxTokens,
		[]catalog.Entry{
			{Model: cfg.Models.ChatModel, Provider: cfg.Models.ChatProvider, Label: "Default"},
			{Model: cfg.Models.DocumentChatModel, Provider: cfg.Models.ChatProvider, Label: "Document chat"},
		},
	)
	log.Printf("[INFO] Model catalog loaded (chat=%s, doc=%s, image=%s)",
		cfg.Models.ChatModel, cfg.Models.DocumentChatModel, cfg.Models.ImageModel)

	// 5. Outbound Clients
	chatClient := backend.NewChatClient(cfg.Backend.BaseURL, cfg.Backend.APIToken, sysLogger)
	mediaClient := backend.NewMediaClient(cfg.Backend.BaseURL, cfg.Backend.APIToken, cfg.Backend.OrganizationId, "", sysLogger)
	extractorClient := extractor.NewClient(cfg.Extractor.BaseURL, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Topics.ExtractAttachment, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.ExtractAttachment,
		attachmentRepo,
		extractorClient,
		natsPub,
	)

	attachmentService := service.NewAttachmentService(attachmentRepo, publisherService, sysLogger)

	turnDelivery := websocket.NewTurnBroadcaster(wsHub)
	chatService := service.NewChatService(
		sessionRepo,
		attachmentRepo,
		modelCatalog,
		chatClient,
		mediaClient,
		natsPub,
		turnDelivery,
		chat.DefaultTiming(),
		cfg.Backend.OrganizationId,
		sysLogger,
	)

	// 7. Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	// 8. Controllers
	return &Container{
		NotificationHandler:  notifHandler,
		WebSocketHub:         wsHub,
		ChatController:       controller.NewChatController(chatService),
		AttachmentController: controller.NewAttachmentController(attachmentService),

		ConsumerService: consumerService,
	}
}
