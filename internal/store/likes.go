package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"gorm.io/gorm"
)

// ErrNotLiked is returned by Unlike when the user has no like on the publication.
var ErrNotLiked = fmt.Errorf("like %w", ErrNotFound)

type Likes struct {
	db *gorm.DB
}

// Like records userID's like and increments the publication's cached counter
// in the same transaction, so the counter cannot drift from the like set.
func (r *Likes) Like(ctx context.Context, publicationID, userID string) (*models.Publication, error) {
	var pub models.Publication
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pub, "id = ?", publicationID).Error; err != nil {
			return translate(err)
		}
		exists, err := likeExists(tx, publicationID, userID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("like %w", ErrAlreadyExists)
		}
		if err := tx.Create(&models.Like{PublicationID: publicationID, UserID: userID}).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&models.Publication{}).Where("id = ?", publicationID).
			Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		return tx.First(&pub, "id = ?", publicationID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("store: like publication %s: %w", publicationID, err)
	}
	return &pub, nil
}

// Unlike removes userID's like and decrements the counter, never below zero.
func (r *Likes) Unlike(ctx context.Context, publicationID, userID string) (*models.Publication, error) {
	var pub models.Publication
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pub, "id = ?", publicationID).Error; err != nil {
			return translate(err)
		}
		res := tx.Where("publication_id = ? AND user_id = ?", publicationID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotLiked
		}
		if err := tx.Model(&models.Publication{}).Where("id = ?", publicationID).
			Update("like_count", gorm.Expr("MAX(like_count - 1, 0)")).Error; err != nil {
			return err
		}
		return tx.First(&pub, "id = ?", publicationID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("store: unlike publication %s: %w", publicationID, err)
	}
	return &pub, nil
}

func (r *Likes) Exists(ctx context.Context, publicationID, userID string) (bool, error) {
	ok, err := likeExists(r.db.WithContext(ctx), publicationID, userID)
	if err != nil {
		return false, fmt.Errorf("store: check like: %w", err)
	}
	return ok, nil
}

// Count returns the number of like documents, the source of truth that
// Publication.LikeCount caches.
func (r *Likes) Count(ctx context.Context, publicationID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("publication_id = ?", publicationID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("store: count likes: %w", err)
	}
	return n, nil
}

func likeExists(db *gorm.DB, publicationID, userID string) (bool, error) {
	var like models.Like
	err := db.Select("id").Where("publication_id = ? AND user_id = ?", publicationID, userID).Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
