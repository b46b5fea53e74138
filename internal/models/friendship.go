package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship is a directed follow: FollowerID follows FolloweeID.
type Friendship struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	FollowerID string    `gorm:"not null;uniqueIndex:idx_friendships_pair" json:"followerId"`
	FolloweeID string    `gorm:"not null;uniqueIndex:idx_friendships_pair" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	return nil
}
