package admin

import (
	"github.com/confirmador/internal/http/response"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"

	"github.com/gin-gonic/gin"
)

// GetShopifyConfig returns the active storefront connection. Credentials are
// never serialized; only their presence is reported.
func (h *Handler) GetShopifyConfig(c *gin.Context) {
	cfg, err := h.ShopifyConfigRepo.GetActive()
	if err != nil {
		logger.Errorw("admin_get_shopify_config_failed", "error", err)
		response.Internal(c, "lookup failed")
		return
	}
	if cfg == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, gin.H{
		"id":                 cfg.ID,
		"shop_url":           cfg.ShopURL,
		"active":             cfg.Active,
		"has_access_token":   cfg.AccessToken != "",
		"has_webhook_secret": cfg.WebhookSecret != "",
		"created_at":         cfg.CreatedAt,
		"updated_at":         cfg.UpdatedAt,
	})
}

type upsertShopifyConfigRequest struct {
	ShopURL       string `json:"shop_url" binding:"required"`
	AccessToken   string `json:"access_token" binding:"required"`
	WebhookSecret string `json:"webhook_secret" binding:"required"`
	Active        *bool  `json:"active"`
}

// UpsertShopifyConfig stores the storefront credentials.
func (h *Handler) UpsertShopifyConfig(c *gin.Context) {
	var req upsertShopifyConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "shop_url, access_token and webhook_secret are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cfg := &models.ShopifyConfig{
		ShopURL:       req.ShopURL,
		AccessToken:   req.AccessToken,
		WebhookSecret: req.WebhookSecret,
		Active:        active,
	}
	if err := h.ShopifyConfigRepo.Upsert(cfg); err != nil {
		logger.Errorw("admin_upsert_shopify_config_failed", "shop_url", req.ShopURL, "error", err)
		response.Internal(c, "save failed")
		return
	}
	response.SuccessWithMsg(c, "config saved", gin.H{"id": cfg.ID, "shop_url": cfg.ShopURL, "active": cfg.Active})
}
