package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/events"
	"ai-docchat-be/pkg/extractor"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains extraction jobs: it pulls the stored file, sends its
// bytes to the extractor and records the outcome on the attachment.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	attachmentRepo *memory.AttachmentRepository
	extractor      *extractor.Client
	natsPub        *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	attachmentRepo *memory.AttachmentRepository,
	extractorClient *extractor.Client,
	natsPub *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		attachmentRepo: attachmentRepo,
		extractor:      extractorClient,
		natsPub:        natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishExtractAttachmentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	fileId := payload.FileId.String()
	log.Printf("[INFO] Processing attachment extraction for FileId: %s", fileId)

	file, found := cs.attachmentRepo.Get(fileId)
	if !found {
		log.Printf("[ERROR] Attachment not found: %s", fileId)
		msg.Ack() // File deleted before the job ran? Ack.
		return
	}

	data, err := base64.StdEncoding.DecodeString(file.Base64)
	if err != nil {
		log.Printf("[ERROR] Attachment %s holds invalid base64: %v", fileId, err)
		cs.attachmentRepo.MarkFailed(fileId, "stored file data is corrupt")
		cs.publishOutcome(ctx, payload, file.Name, false, "stored file data is corrupt")
		msg.Ack()
		return
	}

	result, err := cs.extractor.Process(ctx, file.Name, data)
	if err != nil {
		log.Printf("[ERROR] Extraction failed for %s: %v", fileId, err)
		cs.attachmentRepo.MarkFailed(fileId, err.Error())
		cs.publishOutcome(ctx, payload, file.Name, false, err.Error())
		msg.Ack() // The extractor already saw the file; retrying rarely helps.
		return
	}

	if !cs.attachmentRepo.MarkProcessed(fileId, result.Content, result.Method) {
		log.Printf("[INFO] Attachment %s deleted while processing, dropping result", fileId)
		msg.Ack()
		return
	}
	cs.publishOutcome(ctx, payload, file.Name, true, "")

	log.Printf("[SUCCESS] Attachment processed: %s (%d chars extracted)", fileId, len(result.Content))
	msg.Ack()
}

func (cs *consumerService) publishOutcome(ctx context.Context, payload dto.PublishExtractAttachmentMessage, fileName string, success bool, errMsg string) {
	if cs.natsPub == nil {
		return
	}
	evt := events.NewAttachmentProcessedEvent(payload.UserId.String(), payload.FileId.String(), fileName, success, errMsg)
	if err := cs.natsPub.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish attachment outcome: %v", err)
	}
}
