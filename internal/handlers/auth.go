package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/middleware"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"github.com/pavangundu/ai-helper/pkg/utils"
)

type SignupInput struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	TargetRole     string `json:"targetRole"`
	CoreSkill      string `json:"coreSkill"`
	CurrentLevel   string `json:"currentLevel"`
	DailyStudyTime int    `json:"dailyStudyTime"`
	GoalTimeline   string `json:"goalTimeline"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) issueToken(c *gin.Context, status int, p *models.Profile) {
	token, err := utils.GenerateToken(p.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate token")
		fail(c, apperrors.Internal("Failed to generate token"))
		return
	}
	c.JSON(status, gin.H{
		"token": token,
		"user":  services.NewProfileView(p),
	})
}

func (h *Handler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Profiles.Register(c.Request.Context(), services.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Settings: models.ProfileSettings{
			TargetRole:     input.TargetRole,
			CoreSkill:      input.CoreSkill,
			CurrentLevel:   input.CurrentLevel,
			DailyStudyTime: input.DailyStudyTime,
			GoalTimeline:   input.GoalTimeline,
		},
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, p)
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Profiles.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	logger.Info().Str("profile_id", p.ID).Msg("User logged in")
	h.issueToken(c, http.StatusOK, p)
}

// Logout revokes the caller's token for the rest of its lifetime. Without redis the
// token cannot be revoked; the response says so with revoked=false.
func (h *Handler) Logout(c *gin.Context) {
	v, ok := c.Get(middleware.ContextClaims)
	claims, _ := v.(*utils.Claims)
	if !ok || claims == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already logged out", "revoked": false})
		return
	}

	if h.Tokens == nil || !h.Tokens.Enabled() {
		logger.Warn().Str("profile_id", claims.ProfileID).Msg("Logout without token revocation, REDIS_ADDR is not set")
		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out on this device. The token stays valid until it expires because revocation is not configured",
			"revoked": false,
		})
		return
	}

	if ttl := time.Until(claims.GetExpiresAt()); ttl > 0 {
		if err := h.Tokens.BlacklistToken(c.Request.Context(), claims.GetJTI(), ttl); err != nil {
			logger.Error().Err(err).Msg("Failed to blacklist token")
			fail(c, apperrors.Unavailable("Failed to logout, please try again"))
			return
		}
	}

	logger.Info().Str("profile_id", claims.ProfileID).Msg("User logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully", "revoked": true})
}
