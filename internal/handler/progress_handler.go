package handler

import (
	"bpmn-interview-be/internal/metrics"
	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/internal/service"
	internalWS "bpmn-interview-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ProgressHandler upgrades requests to the per-session progress stream.
type ProgressHandler struct {
	interviewService service.IInterviewService
	hub              *internalWS.Hub
	metrics          *metrics.Recorder
	logger           logger.ILogger
}

func NewProgressHandler(interviewService service.IInterviewService, hub *internalWS.Hub, recorder *metrics.Recorder, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		interviewService: interviewService,
		hub:              hub,
		metrics:          recorder,
		logger:           log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/interview/v1/:id/ws", h.ServeWs)
}

// ServeWs streams progress for one existing session.
func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionID := c.Params("id")
	if _, err := h.interviewService.Show(c.UserContext(), sessionID); err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ProgressHandler", "Starting progress stream", map[string]interface{}{"session_id": sessionID})
		h.metrics.StreamOpened()
		internalWS.ServeWs(h.hub, conn, sessionID)
		h.metrics.StreamClosed()
		h.logger.Info("ProgressHandler", "Progress stream ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}
