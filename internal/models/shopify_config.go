package models

import (
	"time"
)

// ShopifyConfig is a storefront credential record. The system assumes a
// single active shop; lookups key by shop domain first and fall back to the
// most recently created active row.
type ShopifyConfig struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ShopURL       string    `gorm:"index;not null" json:"shop_url"`
	AccessToken   string    `gorm:"not null" json:"-"`
	WebhookSecret string    `gorm:"not null" json:"-"`
	Active        bool      `gorm:"index;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (ShopifyConfig) TableName() string {
	return "shopify_configs"
}
