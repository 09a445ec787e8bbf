package public

import (
	"context"
	"errors"

	"github.com/confirmador/internal/http/response"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/service"
	"github.com/confirmador/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

// WhatsAppStatus reports the messaging session state for the dashboard.
func (h *Handler) WhatsAppStatus(c *gin.Context) {
	status, err := h.Messenger.Status(c.Request.Context())
	if err != nil {
		logger.Warnw("whatsapp_status_failed", "error", err)
		response.Success(c, whatsapp.Status{Connected: false, Message: "gateway unreachable"})
		return
	}
	response.Success(c, status)
}

// WhatsAppEvents receives inbound message events pushed by the gateway.
// Processing is asynchronous and individual failures are swallowed so the
// gateway never sees an error for a message we simply cannot match.
func (h *Handler) WhatsAppEvents(c *gin.Context) {
	var evt whatsapp.MessageEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}
	go h.ConfirmationService.HandleReply(context.Background(), evt)
	response.Success(c, nil)
}

type sendConfirmationRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// SendConfirmation re-sends the confirmation message on operator request.
func (h *Handler) SendConfirmation(c *gin.Context) {
	var req sendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "order_id is required")
		return
	}
	if err := h.ConfirmationService.SendManual(c.Request.Context(), req.OrderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrMessengerNotReady):
			response.Error(c, response.CodeConflict, "whatsapp session not ready")
		case errors.Is(err, service.ErrPhoneMissing), errors.Is(err, whatsapp.ErrNotRegistered):
			response.BadRequest(c, err.Error())
		default:
			logger.Errorw("manual_confirmation_failed", "order_id", req.OrderID, "error", err)
			response.Internal(c, "send failed")
		}
		return
	}
	response.SuccessWithMsg(c, "confirmation sent", gin.H{"order_id": req.OrderID})
}
