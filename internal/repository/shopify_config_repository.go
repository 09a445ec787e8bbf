package repository

import (
	"errors"
	"strings"

	"github.com/confirmador/internal/models"

	"gorm.io/gorm"
)

// ShopifyConfigRepository is the storefront credential access interface.
type ShopifyConfigRepository interface {
	GetByShopDomain(domain string) (*models.ShopifyConfig, error)
	GetActive() (*models.ShopifyConfig, error)
	Upsert(cfg *models.ShopifyConfig) error
}

// GormShopifyConfigRepository is the GORM implementation.
type GormShopifyConfigRepository struct {
	db *gorm.DB
}

// NewShopifyConfigRepository creates a shopify config repository.
func NewShopifyConfigRepository(db *gorm.DB) *GormShopifyConfigRepository {
	return &GormShopifyConfigRepository{db: db}
}

// GetByShopDomain fetches the newest active config for a shop domain,
// falling back to the newest active config overall when the domain has no
// row of its own.
func (r *GormShopifyConfigRepository) GetByShopDomain(domain string) (*models.ShopifyConfig, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" {
		var cfg models.ShopifyConfig
		err := r.db.Where("shop_url = ? AND active = ?", domain, true).
			Order("created_at DESC").
			First(&cfg).Error
		if err == nil {
			return &cfg, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return r.GetActive()
}

// GetActive fetches the most recently created active config. Uniqueness of
// the active row is not enforced; newest wins.
func (r *GormShopifyConfigRepository) GetActive() (*models.ShopifyConfig, error) {
	var cfg models.ShopifyConfig
	if err := r.db.Where("active = ?", true).
		Order("created_at DESC").
		First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Upsert creates or updates the config for a shop domain.
func (r *GormShopifyConfigRepository) Upsert(cfg *models.ShopifyConfig) error {
	cfg.ShopURL = strings.ToLower(strings.TrimSpace(cfg.ShopURL))
	var existing models.ShopifyConfig
	err := r.db.Where("shop_url = ?", cfg.ShopURL).Order("created_at DESC").First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(cfg).Error
	}
	if err != nil {
		return err
	}
	existing.AccessToken = cfg.AccessToken
	existing.WebhookSecret = cfg.WebhookSecret
	existing.Active = cfg.Active
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*cfg = existing
	return nil
}
