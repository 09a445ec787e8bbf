package admin

import (
	"strconv"
	"time"

	"github.com/confirmador/internal/http/response"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders returns the paginated order listing with optional status,
// order number and free-text filters.
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      c.Query("status"),
		OrderNumber: c.Query("order_number"),
		Search:      c.Query("search"),
	}
	if from := c.Query("created_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := c.Query("created_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.CreatedTo = &end
		}
	}

	orders, total, err := h.OrderRepo.List(filter)
	if err != nil {
		logger.Errorw("admin_list_orders_failed", "error", err)
		response.Internal(c, "list failed")
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	totalPage := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetOrder returns a single order with items and timeline.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.OrderRepo.GetByID(uint(id))
	if err != nil {
		logger.Errorw("admin_get_order_failed", "order_id", id, "error", err)
		response.Internal(c, "lookup failed")
		return
	}
	if order == nil {
		response.NotFound(c, "order not found")
		return
	}
	response.Success(c, order)
}
