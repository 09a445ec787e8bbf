package public

import (
	"time"

	"github.com/confirmador/internal/http/response"
	"github.com/confirmador/internal/logger"

	"github.com/gin-gonic/gin"
)

type syncOrdersRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// SyncOrders pulls historical Shopify orders for a date range into local
// storage. No confirmation messages are sent for imported orders.
func (h *Handler) SyncOrders(c *gin.Context) {
	var req syncOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "start_date and end_date are required")
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		response.BadRequest(c, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		response.BadRequest(c, "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		response.BadRequest(c, "end_date must not precede start_date")
		return
	}

	summary, err := h.SyncService.PullOrders(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		logger.Errorw("sync_orders_failed", "start", req.StartDate, "end", req.EndDate, "error", err)
		response.Internal(c, "sync failed")
		return
	}
	response.Success(c, summary)
}
