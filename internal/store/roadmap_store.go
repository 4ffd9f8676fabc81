package store

import (
	"context"
	"errors"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"gorm.io/gorm"
)

type RoadmapStore struct {
	db *gorm.DB
}

func NewRoadmapStore(db *gorm.DB) *RoadmapStore {
	return &RoadmapStore{db: db}
}

func orderedDays(db *gorm.DB) *gorm.DB {
	return db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("month, week, day")
	})
}

// Create stores the roadmap and its days in one transaction. A second active
// roadmap for the same profile is a Conflict.
func (s *RoadmapStore) Create(ctx context.Context, r *models.Roadmap) error {
	if r.Status == "" {
		r.Status = models.RoadmapActive
	}
	days := r.Days

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.Status == models.RoadmapActive {
			var count int64
			if err := tx.Model(&models.Roadmap{}).
				Where("profile_id = ? AND status = ?", r.ProfileID, models.RoadmapActive).
				Count(&count).Error; err != nil {
				return apperrors.Storage(err)
			}
			if count > 0 {
				return apperrors.Conflict("An active roadmap already exists")
			}
		}

		if err := tx.Omit("Days").Create(r).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("An active roadmap already exists")
			}
			return apperrors.Storage(err)
		}
		if len(days) == 0 {
			return nil
		}
		for i := range days {
			days[i].RoadmapID = r.ID
		}
		if err := tx.CreateInBatches(&days, 200).Error; err != nil {
			return apperrors.Storage(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.Days = days
	return nil
}

// FindByID loads a roadmap with its days in (month, week, day) order.
func (s *RoadmapStore) FindByID(ctx context.Context, id string) (*models.Roadmap, error) {
	var r models.Roadmap
	if err := orderedDays(s.db.WithContext(ctx)).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "Roadmap not found")
	}
	return &r, nil
}

// FindHeader loads a roadmap without its days.
func (s *RoadmapStore) FindHeader(ctx context.Context, id string) (*models.Roadmap, error) {
	var r models.Roadmap
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "Roadmap not found")
	}
	return &r, nil
}

func (s *RoadmapStore) FindActiveByProfile(ctx context.Context, profileID string) (*models.Roadmap, error) {
	var r models.Roadmap
	err := orderedDays(s.db.WithContext(ctx)).
		Where("profile_id = ? AND status = ?", profileID, models.RoadmapActive).
		First(&r).Error
	if err != nil {
		return nil, wrapErr(err, "Roadmap not found")
	}
	return &r, nil
}

// FindDay resolves a day by its address through the unique (roadmap, month, week, day) index.
func (s *RoadmapStore) FindDay(ctx context.Context, roadmapID string, addr models.DayAddress) (*models.RoadmapDay, error) {
	var d models.RoadmapDay
	err := s.db.WithContext(ctx).
		Where("roadmap_id = ? AND month = ? AND week = ? AND day = ?", roadmapID, addr.Month, addr.Week, addr.Day).
		First(&d).Error
	if err != nil {
		return nil, wrapErr(err, "Task day not found")
	}
	return &d, nil
}

// SaveDay writes the day's completion state if nobody else changed it since it was read.
// A stale version is a Conflict; the caller re-reads and retries.
func (s *RoadmapStore) SaveDay(ctx context.Context, d *models.RoadmapDay) error {
	res := s.db.WithContext(ctx).Model(&models.RoadmapDay{}).
		Where("id = ? AND version = ?", d.ID, d.Version).
		Updates(map[string]interface{}{
			"resources":    d.Resources,
			"is_completed": d.IsCompleted,
			"completed_at": d.CompletedAt,
			"version":      d.Version + 1,
		})
	if res.Error != nil {
		return apperrors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("Task day was updated concurrently")
	}
	d.Version++
	return nil
}

// DeleteByProfile removes every roadmap owned by the profile.
func (s *RoadmapStore) DeleteByProfile(ctx context.Context, profileID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRoadmaps(tx, profileID)
	})
	return wrapErr(err, "Roadmap not found")
}
