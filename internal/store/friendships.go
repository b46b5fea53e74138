package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"gorm.io/gorm"
)

type Friendships struct {
	db *gorm.DB
}

// Follow creates the follower -> followee edge unless it already exists.
func (r *Friendships) Follow(ctx context.Context, followerID, followeeID string) (*models.Friendship, error) {
	exists, err := r.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("store: follow %s: friendship %w", followeeID, ErrAlreadyExists)
	}
	f := &models.Friendship{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, fmt.Errorf("store: follow %s: %w", followeeID, translate(err))
	}
	return f, nil
}

func (r *Friendships) Unfollow(ctx context.Context, followerID, followeeID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Friendship{})
	if res.Error != nil {
		return fmt.Errorf("store: unfollow %s: %w", followeeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: unfollow %s: friendship %w", followeeID, ErrNotFound)
	}
	return nil
}

func (r *Friendships) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var f models.Friendship
	err := r.db.WithContext(ctx).Select("id").Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: check friendship: %w", err)
	}
	return true, nil
}

// Following lists the edges where followerID is the follower, newest first.
func (r *Friendships) Following(ctx context.Context, followerID string) ([]models.Friendship, error) {
	out := []models.Friendship{}
	if err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list following of %s: %w", followerID, err)
	}
	return out, nil
}

// DeleteByUser drops every edge touching userID.
func (r *Friendships) DeleteByUser(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("follower_id = ? OR followee_id = ?", userID, userID).Delete(&models.Friendship{}).Error
	if err != nil {
		return fmt.Errorf("store: delete friendships of %s: %w", userID, err)
	}
	return nil
}
