// FILE: internal/controller/assistant_controller.go
package controller

import (
	"github.com/fahim-ux/hsbc-backend-sub000/internal/dto"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/serverutils"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetConversation(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
	ClearConversation(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("/message", c.SendMessage)
	h.Get("/conversation/:id", c.GetConversation)
	h.Get("/conversation/:id/transcript", c.GetTranscript)
	h.Delete("/conversation/:id", c.ClearConversation)
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	return uuid.Parse(raw)
}

func (c *assistantController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.Error(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return serverutils.Error(ctx, fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.Success(ctx, "Message processed", res)
}

func (c *assistantController) GetConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	res, err := c.service.GetConversation(ctx.Context(), userId, ctx.Params("id"))
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusNotFound, err.Error())
	}
	return serverutils.Success(ctx, "Conversation state", res)
}

func (c *assistantController) GetTranscript(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	res, err := c.service.GetTranscript(ctx.Context(), userId, ctx.Params("id"))
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return serverutils.Success(ctx, "Conversation transcript", res)
}

func (c *assistantController) ClearConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := c.service.ClearConversation(ctx.Context(), userId, ctx.Params("id")); err != nil {
		return serverutils.Error(ctx, fiber.StatusNotFound, err.Error())
	}
	return serverutils.Success(ctx, "Conversation cleared", nil)
}
