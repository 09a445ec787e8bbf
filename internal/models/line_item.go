package models

import (
	"time"
)

// LineItem belongs to exactly one order. Re-syncing an order's items is a
// destructive replace: delete all rows for the order, insert the new set.
type LineItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	SKU       string    `gorm:"type:varchar(120)" json:"sku,omitempty"`
	Variant   string    `gorm:"type:varchar(200)" json:"variant,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (LineItem) TableName() string {
	return "line_items"
}
