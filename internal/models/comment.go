package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is never edited once written.
type Comment struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	PublicationID string    `gorm:"not null;index" json:"publicationId"`
	AuthorID      string    `gorm:"not null" json:"authorId"`
	AuthorName    string    `gorm:"not null" json:"authorName"`
	Text          string    `gorm:"not null" json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
