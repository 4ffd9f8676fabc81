package services

import (
	"context"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

// Progress is the percent of days with each completion flag, plus overall sub-task completion.
type Progress struct {
	Aptitude      int `json:"aptitude"`
	DSA           int `json:"dsa"`
	Core          int `json:"core"`
	Overall       int `json:"overall"`
	TotalDays     int `json:"totalDays"`
	CompletedDays int `json:"completedDays"`
}

// ComputeProgress walks the days once. With no days every percentage is 0.
func ComputeProgress(days []models.RoadmapDay) Progress {
	var apt, dsa, core, completed int
	for i := range days {
		d := &days[i]
		if d.HasFlag(models.CategoryAptitude.Flag()) {
			apt++
		}
		if d.HasFlag(models.CategoryDSA.Flag()) {
			dsa++
		}
		if d.HasFlag(models.CategoryCore.Flag()) {
			core++
		}
		if d.IsCompleted {
			completed++
		}
	}

	total := len(days)
	return Progress{
		Aptitude:      roundPercent(apt, total),
		DSA:           roundPercent(dsa, total),
		Core:          roundPercent(core, total),
		Overall:       roundPercent(apt+dsa+core, 3*total),
		TotalDays:     total,
		CompletedDays: completed,
	}
}

// roundPercent is round-half-up of 100*part/whole in integer arithmetic.
func roundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// ProgressCache is a read-through cache of per-roadmap progress. A nil cache or nil
// backend disables it.
type ProgressCache struct {
	backend Cache
	ttl     time.Duration
}

func NewProgressCache(backend Cache, ttl time.Duration) *ProgressCache {
	return &ProgressCache{backend: backend, ttl: ttl}
}

func progressKey(roadmapID string) string {
	return "progress:" + roadmapID
}

func (c *ProgressCache) enabled() bool {
	return c != nil && c.backend != nil && c.ttl > 0
}

func (c *ProgressCache) Get(ctx context.Context, roadmapID string) (Progress, bool) {
	var p Progress
	if !c.enabled() {
		return p, false
	}
	if err := c.backend.CacheGet(ctx, progressKey(roadmapID), &p); err != nil {
		return p, false
	}
	return p, true
}

func (c *ProgressCache) Set(ctx context.Context, roadmapID string, p Progress) {
	if !c.enabled() {
		return
	}
	if err := c.backend.CacheSet(ctx, progressKey(roadmapID), p, c.ttl); err != nil {
		logger.Warn().Err(err).Str("roadmap_id", roadmapID).Msg("Failed to cache progress")
	}
}

func (c *ProgressCache) Invalidate(ctx context.Context, roadmapID string) {
	if !c.enabled() {
		return
	}
	if err := c.backend.CacheDelete(ctx, progressKey(roadmapID)); err != nil {
		logger.Warn().Err(err).Str("roadmap_id", roadmapID).Msg("Failed to invalidate progress cache")
	}
}
