package router

import (
	"github.com/confirmador/internal/config"
	adminhandlers "github.com/confirmador/internal/http/handlers/admin"
	publichandlers "github.com/confirmador/internal/http/handlers/public"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP engine with all routes and middleware.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		webhooks := api.Group("/webhooks/shopify")
		{
			webhooks.POST("", publicHandler.ShopifyOrderWebhook)
			webhooks.POST("/orders/create", publicHandler.ShopifyOrderWebhook)
		}

		wa := api.Group("/whatsapp")
		{
			wa.GET("/status", publicHandler.WhatsAppStatus)
			wa.POST("/events", publicHandler.WhatsAppEvents)
			wa.POST("/send-confirmation", publicHandler.SendConfirmation)
		}

		api.POST("/shopify/sync-orders", publicHandler.SyncOrders)

		admin := api.Group("/admin")
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.GET("/templates", adminHandler.ListTemplates)
			admin.PUT("/templates/:id", adminHandler.UpdateTemplate)
			admin.GET("/shopify-config", adminHandler.GetShopifyConfig)
			admin.PUT("/shopify-config", adminHandler.UpsertShopifyConfig)
		}
	}

	return r
}
