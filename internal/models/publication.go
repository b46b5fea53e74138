package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publication is a geo-tagged warning post.
type Publication struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	AuthorID   string         `gorm:"not null;index" json:"authorId"`
	AuthorName string         `gorm:"not null" json:"authorName"` // copy of User.Name
	Title      string         `gorm:"not null" json:"title"`
	Body       string         `gorm:"not null" json:"body"`
	Address    string         `gorm:"not null" json:"address"`
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	Shape      datatypes.JSON `json:"shape,omitempty"` // GeoJSON drawn on the map
	ImageURL   string         `json:"imageUrl,omitempty"`
	LikeCount  int64          `gorm:"not null;default:0" json:"likeCount"` // cache of len(likes)
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (p *Publication) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
