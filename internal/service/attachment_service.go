package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxAttachmentSize = 10 * 1024 * 1024

type IAttachmentService interface {
	Upload(ctx context.Context, userId uuid.UUID, fileName, mimeType string, data []byte) (*dto.UploadAttachmentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) (*dto.ListAttachmentsResponse, error)
	Delete(ctx context.Context, userId, fileId uuid.UUID) error
	Clear(ctx context.Context, userId uuid.UUID) (*dto.ClearAttachmentsResponse, error)
}

type attachmentService struct {
	repo             *memory.AttachmentRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewAttachmentService(repo *memory.AttachmentRepository, publisherService IPublisherService, log logger.ILogger) IAttachmentService {
	return &attachmentService{
		repo:             repo,
		publisherService: publisherService,
		logger:           log,
	}
}

// Upload stores the file in memory and, for non-image types, queues a text
// extraction job. Images stay base64-only and are inlined at send time.
func (s *attachmentService) Upload(ctx context.Context, userId uuid.UUID, fileName, mimeType string, data []byte) (*dto.UploadAttachmentResponse, error) {
	if len(data) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File is empty")
	}
	if len(data) > maxAttachmentSize {
		return nil, fiber.NewError(fiber.StatusBadRequest, "File exceeds the 10MB limit")
	}

	file := &entity.AttachedFile{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      fileName,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		Base64:    base64.StdEncoding.EncodeToString(data),
		CreatedAt: time.Now(),
	}
	s.repo.Save(file)

	if chat.CoarseFileType(mimeType) != "image" {
		payload, err := json.Marshal(dto.PublishExtractAttachmentMessage{
			FileId: file.Id,
			UserId: userId,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal extraction job: %w", err)
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("AttachmentService", "Failed to queue extraction job", map[string]interface{}{
				"file_id": file.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	s.logger.Info("AttachmentService", "File uploaded", map[string]interface{}{
		"file_id": file.Id.String(),
		"name":    fileName,
		"size":    file.Size,
	})

	return &dto.UploadAttachmentResponse{File: toAttachedFileDTO(file)}, nil
}

func (s *attachmentService) GetAll(ctx context.Context, userId uuid.UUID) (*dto.ListAttachmentsResponse, error) {
	files := s.repo.ListByUser(userId)
	out := make([]dto.AttachedFileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, toAttachedFileDTO(f))
	}
	return &dto.ListAttachmentsResponse{Files: out}, nil
}

func (s *attachmentService) Delete(ctx context.Context, userId, fileId uuid.UUID) error {
	file, found := s.repo.Get(fileId.String())
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	if file.UserId != userId {
		return fiber.NewError(fiber.StatusForbidden, "File belongs to another user")
	}
	s.repo.Delete(fileId.String())
	return nil
}

func (s *attachmentService) Clear(ctx context.Context, userId uuid.UUID) (*dto.ClearAttachmentsResponse, error) {
	removed := s.repo.ClearByUser(userId)
	return &dto.ClearAttachmentsResponse{Removed: removed}, nil
}

func toAttachedFileDTO(f *entity.AttachedFile) dto.AttachedFileDTO {
	return dto.AttachedFileDTO{
		Id:               f.Id,
		Name:             f.Name,
		Size:             f.Size,
		Type:             f.MimeType,
		IsProcessed:      f.IsProcessed,
		ProcessingError:  f.ProcessingError,
		ProcessingMethod: f.ProcessingMethod,
		CreatedAt:        f.CreatedAt,
	}
}
