package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/middleware"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
)

// ActivityFeed reads a profile's recent activity.
type ActivityFeed interface {
	Recent(ctx context.Context, profileID string, limit int) ([]models.UserActivity, error)
}

// TokenRevoker revokes a token id until its expiry. Enabled is false when there is no
// backing store (redis), in which case tokens cannot be revoked.
type TokenRevoker interface {
	Enabled() bool
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Handler serves the JSON API. Errors are attached with c.Error and rendered by
// middleware.ErrorHandlerMiddleware.
type Handler struct {
	Profiles   *services.ProfileService
	Roadmaps   *services.RoadmapService
	Completion *services.CompletionService
	Practice   *services.PracticeService
	Activity   ActivityFeed
	Tokens     TokenRevoker
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(apperrors.BadRequest(err.Error()))
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func profileID(c *gin.Context) string {
	return middleware.ProfileID(c)
}
