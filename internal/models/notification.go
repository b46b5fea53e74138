package models

import (
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	RecipientID string    `gorm:"not null;index" json:"recipientId"`
	Message     string    `gorm:"not null" json:"message"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	return nil
}
