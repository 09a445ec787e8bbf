package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/service"
	"github.com/confirmador/internal/shopify"

	"github.com/gin-gonic/gin"
)

// ShopifyOrderWebhook ingests Shopify orders/create webhooks. The signature
// is verified over the raw body before any parsing; responses are plain text
// because Shopify only inspects the HTTP status.
func (h *Handler) ShopifyOrderWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Errorw("webhook_body_read_failed", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	shopDomain := c.GetHeader(constants.HeaderShopifyShopDomain)
	signature := c.GetHeader(constants.HeaderShopifyHmac)
	if err := h.IngestService.VerifyWebhook(shopDomain, signature, body); err != nil {
		logger.Warnw("webhook_rejected", "shop", shopDomain, "client_ip", c.ClientIP())
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload shopify.OrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Errorw("webhook_payload_invalid", "shop", shopDomain, "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	order, created, err := h.IngestService.Ingest(payload, service.SourceWebhook)
	if err != nil {
		logger.Errorw("webhook_ingest_failed", "shop", shopDomain, "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	// Shopify retries on slow responses, so the confirmation send happens
	// off the request path. SendConfirmation is idempotent per order.
	if order != nil && order.MessageSentAt == nil && !order.IsTerminal() {
		orderCopy := *order
		go func() {
			if err := h.ConfirmationService.SendConfirmation(context.Background(), &orderCopy); err != nil {
				logger.Warnw("webhook_confirmation_dispatch_failed", "order_id", orderCopy.ID, "error", err)
			}
		}()
	}

	logger.Infow("webhook_accepted", "shop", shopDomain, "created", created)
	c.String(http.StatusOK, "ok")
}
