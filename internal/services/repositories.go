package services

import (
	"context"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
)

// ProfileRepository is the profile persistence the services need. internal/store
// provides the gorm implementation.
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	ResetWithSettings(ctx context.Context, id string, settings models.ProfileSettings) (*models.Profile, error)
	Delete(ctx context.Context, id string) error

	IncrementStreakOnce(ctx context.Context, id string, now time.Time) (bool, error)
	AddPoints(ctx context.Context, id string, n int) error
	AddStudyTime(ctx context.Context, id string, c models.Category, minutes int) error
	AddBadges(ctx context.Context, id string, badgeIDs ...string) error
}

type RoadmapRepository interface {
	Create(ctx context.Context, r *models.Roadmap) error
	FindByID(ctx context.Context, id string) (*models.Roadmap, error)
	FindHeader(ctx context.Context, id string) (*models.Roadmap, error)
	FindActiveByProfile(ctx context.Context, profileID string) (*models.Roadmap, error)
	FindDay(ctx context.Context, roadmapID string, addr models.DayAddress) (*models.RoadmapDay, error)
	SaveDay(ctx context.Context, d *models.RoadmapDay) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, a *models.UserActivity) error
}

// Cache is a JSON key/value cache (redis in production).
type Cache interface {
	CacheGet(ctx context.Context, key string, dest interface{}) error
	CacheSet(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	CacheDelete(ctx context.Context, keys ...string) error
}

// RateLimiter counts hits per key in a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
