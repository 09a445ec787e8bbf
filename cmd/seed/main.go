package main

import (
	"errors"
	"flag"

	"github.com/confirmador/internal/config"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"

	"gorm.io/gorm"
)

// Seeds the message templates and, when flags are given, the storefront
// credentials. Safe to re-run: existing rows are never overwritten.
func main() {
	var shopURL, accessToken, webhookSecret string
	flag.StringVar(&shopURL, "shop-url", "", "shopify shop domain (example.myshopify.com)")
	flag.StringVar(&accessToken, "access-token", "", "shopify admin API access token")
	flag.StringVar(&webhookSecret, "webhook-secret", "", "shopify webhook signing secret")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	for _, tpl := range models.DefaultTemplates() {
		var existing models.MessageTemplate
		err := models.DB.Where("id = ?", tpl.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seed := tpl
			if err := models.DB.Create(&seed).Error; err != nil {
				stdLog.Printf("Failed to create template %s: %v", tpl.ID, err)
			} else {
				stdLog.Printf("Created template: %s", tpl.ID)
			}
			continue
		}
		if err != nil {
			stdLog.Printf("Failed to check template %s: %v", tpl.ID, err)
			continue
		}
		stdLog.Printf("Template already exists: %s", tpl.ID)
	}

	if shopURL != "" && accessToken != "" {
		var existing models.ShopifyConfig
		err := models.DB.Where("shop_url = ?", shopURL).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfgRow := models.ShopifyConfig{
				ShopURL:       shopURL,
				AccessToken:   accessToken,
				WebhookSecret: webhookSecret,
				Active:        true,
			}
			if err := models.DB.Create(&cfgRow).Error; err != nil {
				stdLog.Printf("Failed to create shopify config: %v", err)
			} else {
				stdLog.Printf("Created shopify config for %s", shopURL)
			}
		} else if err != nil {
			stdLog.Printf("Failed to check shopify config: %v", err)
		} else {
			stdLog.Printf("Shopify config already exists for %s", shopURL)
		}
	}

	stdLog.Println("Seed completed")
}
