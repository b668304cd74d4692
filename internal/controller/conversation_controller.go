package controller

import (
	"legal-rag-be/internal/pkg/serverutils"
	"legal-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IQueryService
}

func NewConversationController(service service.IQueryService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Get(":id", c.Show)
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetConversation(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		status := queryStatus(err)
		return fiber.NewError(status, errorMessage(status, err))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation", res))
}
