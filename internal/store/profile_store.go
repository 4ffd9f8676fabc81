package store

import (
	"context"
	"errors"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func preloadBadges(db *gorm.DB) *gorm.DB {
	return db.Preload("Badges", func(db *gorm.DB) *gorm.DB {
		return db.Order("unlocked_at, badge_id")
	})
}

// Create inserts a new profile. A taken email is a Conflict.
func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", p.Email).Count(&count).Error; err != nil {
		return apperrors.Storage(err)
	}
	if count > 0 {
		return apperrors.Conflict("An account with this email already exists")
	}

	if err := s.db.WithContext(ctx).Omit("Badges").Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("An account with this email already exists")
		}
		return apperrors.Storage(err)
	}
	return nil
}

func (s *ProfileStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := preloadBadges(s.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, wrapErr(err, "User not found")
	}
	return &p, nil
}

func (s *ProfileStore) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := preloadBadges(s.db.WithContext(ctx)).First(&p, "email = ?", email).Error
	if err != nil {
		return nil, wrapErr(err, "User not found")
	}
	return &p, nil
}

// ResetWithSettings saves new study preferences, zeroes streak, points and study
// time, and deletes the profile's roadmaps so a new one is generated. Badges stay.
func (s *ProfileStore) ResetWithSettings(ctx context.Context, id string, settings models.ProfileSettings) (*models.Profile, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":                  settings.Name,
			"target_role":           settings.TargetRole,
			"core_skill":            settings.CoreSkill,
			"current_level":         settings.CurrentLevel,
			"daily_study_time":      settings.DailyStudyTime,
			"goal_timeline":         settings.GoalTimeline,
			"streak":                0,
			"last_streak_increment": nil,
			"points":                0,
			"study_aptitude":        0,
			"study_dsa":             0,
			"study_core":            0,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return deleteRoadmaps(tx, id)
	})
	if err != nil {
		return nil, wrapErr(err, "User not found")
	}
	return s.FindByID(ctx, id)
}

// Delete removes the profile together with its roadmaps, badges and activity.
func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRoadmaps(tx, id); err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileBadge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.UserActivity{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Profile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrapErr(err, "User not found")
}

// IncrementStreakOnce adds one to the streak unless it was already credited on now's
// calendar date (in now's location). It is a single conditional UPDATE, so concurrent
// completions on the same date credit at most once.
func (s *ProfileStore) IncrementStreakOnce(ctx context.Context, id string, now time.Time) (bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Where("(last_streak_increment IS NULL OR last_streak_increment < ? OR last_streak_increment >= ?)", dayStart.UTC(), dayEnd.UTC()).
		Updates(map[string]interface{}{
			"streak":                gorm.Expr("streak + 1"),
			"last_streak_increment": now.UTC(),
		})
	if res.Error != nil {
		return false, apperrors.Storage(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// AddPoints atomically adds n points.
func (s *ProfileStore) AddPoints(ctx context.Context, id string, n int) error {
	return s.increment(ctx, id, map[string]interface{}{"points": gorm.Expr("points + ?", n)})
}

// AddStudyTime atomically adds minutes to the category's accumulator.
func (s *ProfileStore) AddStudyTime(ctx context.Context, id string, c models.Category, minutes int) error {
	col := "study_" + string(c)
	return s.increment(ctx, id, map[string]interface{}{col: gorm.Expr(col+" + ?", minutes)})
}

func (s *ProfileStore) increment(ctx context.Context, id string, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// AddBadges records badges as held. Already-held badges are ignored.
func (s *ProfileStore) AddBadges(ctx context.Context, id string, badgeIDs ...string) error {
	if len(badgeIDs) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.ProfileBadge, 0, len(badgeIDs))
	for _, b := range badgeIDs {
		rows = append(rows, models.ProfileBadge{ProfileID: id, BadgeID: b, UnlockedAt: now})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return wrapErr(err, "User not found")
}

// ResetStreakDates moves last_streak_increment to the given time for one profile (by
// email) or all of them when email is empty. Used by the admin CLI.
func (s *ProfileStore) ResetStreakDates(ctx context.Context, email string, to time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Profile{})
	if email != "" {
		q = q.Where("email = ?", email)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Update("last_streak_increment", to.UTC())
	if res.Error != nil {
		return 0, apperrors.Storage(res.Error)
	}
	return res.RowsAffected, nil
}

func deleteRoadmaps(tx *gorm.DB, profileID string) error {
	sub := tx.Model(&models.Roadmap{}).Select("id").Where("profile_id = ?", profileID)
	if err := tx.Where("roadmap_id IN (?)", sub).Delete(&models.RoadmapDay{}).Error; err != nil {
		return err
	}
	return tx.Where("profile_id = ?", profileID).Delete(&models.Roadmap{}).Error
}
