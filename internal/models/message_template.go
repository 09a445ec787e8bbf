package models

import (
	"time"
)

// MessageTemplate is a mutable message body keyed by a fixed identifier.
// Templates are not versioned; the latest stored value is always used.
type MessageTemplate struct {
	ID        string      `gorm:"primarykey;type:varchar(60)" json:"id"`
	Name      string      `gorm:"not null" json:"name"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	Variables StringArray `gorm:"type:json" json:"variables"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName sets the table name.
func (MessageTemplate) TableName() string {
	return "message_templates"
}
