package handler

import (
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/pkg/serverutils"
	internalWS "legal-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const maxClientIDLength = 128

type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/progress/ws", h.ServeWs)
}

// ServeWs upgrades the request and streams progress events for the client
// id given in the clientId query parameter. The client opens it before
// calling POST /query with the same id.
func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	clientID := c.Query("clientId")
	if clientID == "" || len(clientID) > maxClientIDLength {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Query parameter 'clientId' is required"))
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting progress stream", map[string]interface{}{"client_id": clientID})
			internalWS.Serve(h.hub, conn, clientID)
			h.logger.Info("ProgressHandler", "Progress stream ended", map[string]interface{}{"client_id": clientID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
