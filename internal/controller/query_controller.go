package controller

import (
	"errors"

	"legal-rag-be/internal/dto"
	"legal-rag-be/internal/pkg/serverutils"
	"legal-rag-be/internal/service"
	"legal-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

const HeaderClientID = "X-Client-Id"

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
}

func NewQueryController(service service.IQueryService) IQueryController {
	return &queryController{service: service}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
}

// Query answers one question. Blocked, failed and unrecorded answers still
// carry the full response body; only the status differs.
func (c *queryController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	clientID := ctx.Get(HeaderClientID)
	if clientID == "" {
		clientID = ctx.Query("clientId")
	}

	res, err := c.service.Ask(ctx.UserContext(), serverutils.UserID(ctx), clientID, &req)
	status := queryStatus(err)
	if res == nil {
		if err == nil {
			return fiber.ErrInternalServerError
		}
		return fiber.NewError(status, errorMessage(status, err))
	}

	return ctx.Status(status).JSON(res)
}

func queryStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, service.ErrInvalidQuestion):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrConversationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, rag.ErrBlockedGeneration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrGenerationFailed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorMessage keeps internal causes out of 500 bodies.
func errorMessage(status int, err error) string {
	if status == fiber.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
