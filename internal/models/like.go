package models

import (
	"time"

	"gorm.io/gorm"
)

// Like is unique per (PublicationID, UserID).
type Like struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	PublicationID string    `gorm:"not null;uniqueIndex:idx_likes_publication_user" json:"publicationId"`
	UserID        string    `gorm:"not null;uniqueIndex:idx_likes_publication_user" json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}
