package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the central entity: one cash-on-delivery order awaiting customer
// confirmation over WhatsApp. The timing markers are each set at most once.
type Order struct {
	ID                  uint            `gorm:"primarykey" json:"id"`
	ShopifyOrderID      string          `gorm:"uniqueIndex;not null" json:"shopify_order_id"`      // external gid, stable upsert key
	OrderNumber         string          `gorm:"index;not null" json:"order_number"`                 // human-facing, NOT unique across re-imports
	CustomerName        string          `gorm:"not null" json:"customer_name"`
	CustomerPhone       string          `gorm:"index" json:"customer_phone"`                        // raw, arbitrary format
	CustomerEmail       string          `json:"customer_email,omitempty"`
	TotalValue          Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_value"`
	Currency            string          `gorm:"type:varchar(10)" json:"currency"`
	Status              string          `gorm:"index;not null" json:"status"`
	FinancialStatus     string          `gorm:"type:varchar(40)" json:"financial_status,omitempty"`
	FulfillmentStatus   string          `gorm:"type:varchar(40)" json:"fulfillment_status,omitempty"`
	PaymentGateway      string          `gorm:"type:varchar(60)" json:"payment_gateway,omitempty"`
	Address             string          `gorm:"type:text" json:"address,omitempty"`                 // serialized shipping/billing address
	MessageSentAt       *time.Time      `gorm:"index" json:"message_sent_at"`
	FirstReminderSentAt *time.Time      `json:"first_reminder_sent_at"`
	SecondReminderSentAt *time.Time     `json:"second_reminder_sent_at"`
	AutoCancelledAt     *time.Time      `json:"auto_cancelled_at"`
	ResponseReceivedAt  *time.Time      `json:"response_received_at"`
	Timeline            TimelineEntries `gorm:"type:json" json:"timeline"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`

	Items []LineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order reached a terminal status.
func (o *Order) IsTerminal() bool {
	if o == nil {
		return false
	}
	switch o.Status {
	case "confirmed", "cancelled":
		return true
	}
	return false
}
