package store

import (
	"context"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"gorm.io/gorm"
)

type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Record(ctx context.Context, a *models.UserActivity) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// Recent returns the profile's latest activity, newest first.
func (s *ActivityStore) Recent(ctx context.Context, profileID string, limit int) ([]models.UserActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.UserActivity
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return out, nil
}
