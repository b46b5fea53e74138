package store

import (
	"context"
	"fmt"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"gorm.io/gorm"
)

type Notifications struct {
	db *gorm.DB
}

func (r *Notifications) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("store: create notification: %w", translate(err))
	}
	return nil
}

// ListForRecipient returns the recipient's notifications newest first.
func (r *Notifications) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	out := []models.Notification{}
	if err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list notifications of %s: %w", recipientID, err)
	}
	return out, nil
}

// MarkRead flags one notification as read. Only the recipient's own
// notifications match.
func (r *Notifications) MarkRead(ctx context.Context, id, recipientID string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("store: mark notification %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: mark notification %s read: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Notifications) DeleteForRecipient(ctx context.Context, recipientID string) error {
	if err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("store: delete notifications of %s: %w", recipientID, err)
	}
	return nil
}
