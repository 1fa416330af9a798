package controller

import (
	"io"

	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAttachmentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type attachmentController struct {
	service service.IAttachmentService
}

func NewAttachmentController(service service.IAttachmentService) IAttachmentController {
	return &attachmentController{service: service}
}

func (c *attachmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/attachment/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.GetAll)
	h.Delete("/:id", c.Delete)
	h.Delete("", c.Clear)
}

func (c *attachmentController) Upload(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing 'file' form field")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot read uploaded file")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	res, err := c.service.Upload(ctx.Context(), userId, fileHeader.Filename, mimeType, data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload file", res))
}

func (c *attachmentController) GetAll(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.service.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get attachments", res))
}

func (c *attachmentController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	fileId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid file id")
	}

	if err := c.service.Delete(ctx.Context(), userId, fileId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete attachment", nil))
}

func (c *attachmentController) Clear(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.service.Clear(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear attachments", res))
}
