package store

import (
	"context"
	"fmt"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"gorm.io/gorm"
)

type Comments struct {
	db *gorm.DB
}

func (r *Comments) Create(ctx context.Context, c *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("store: create comment: %w", translate(err))
	}
	return nil
}

// ListByPublication returns the thread oldest first.
func (r *Comments) ListByPublication(ctx context.Context, publicationID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Where("publication_id = ?", publicationID).Order("created_at").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("store: list comments of %s: %w", publicationID, err)
	}
	return comments, nil
}
