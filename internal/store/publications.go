package store

import (
	"context"
	"fmt"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"gorm.io/gorm"
)

type Publications struct {
	db *gorm.DB
}

// ListFilter narrows Publications.List. Zero value lists everything.
type ListFilter struct {
	AuthorID string
}

func (r *Publications) Create(ctx context.Context, p *models.Publication) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("store: create publication: %w", translate(err))
	}
	return nil
}

func (r *Publications) Get(ctx context.Context, id string) (*models.Publication, error) {
	var p models.Publication
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store: get publication %s: %w", id, translate(err))
	}
	return &p, nil
}

// List returns publications newest first.
func (r *Publications) List(ctx context.Context, f ListFilter) ([]models.Publication, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	pubs := []models.Publication{}
	if err := q.Find(&pubs).Error; err != nil {
		return nil, fmt.Errorf("store: list publications: %w", err)
	}
	return pubs, nil
}

func (r *Publications) Update(ctx context.Context, id string, fields map[string]any) (*models.Publication, error) {
	res := r.db.WithContext(ctx).Model(&models.Publication{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("store: update publication %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("store: update publication %s: %w", id, ErrNotFound)
	}
	return r.Get(ctx, id)
}

// Delete removes the publication together with its likes and comments.
func (r *Publications) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("store: delete publication %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMany removes the listed publications and their likes and comments in
// one transaction. Unknown ids are ignored; the count of removed
// publications is returned.
func (r *Publications) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("publication_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("publication_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Publication{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: delete publications: %w", err)
	}
	return deleted, nil
}

// DeleteByAuthor removes every publication written by authorID.
func (r *Publications) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Publication{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("store: list publications of %s: %w", authorID, err)
	}
	return r.DeleteMany(ctx, ids)
}

// RenameAuthor rewrites the denormalized author name on every publication of
// authorID. All updates commit as one batch: either every publication carries
// the new name or none does.
func (r *Publications) RenameAuthor(ctx context.Context, authorID, name string) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Publication{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			res := tx.Model(&models.Publication{}).Where("id = ?", id).Update("author_name", name)
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: rename author %s: %w", authorID, err)
	}
	return updated, nil
}
