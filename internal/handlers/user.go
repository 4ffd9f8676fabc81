package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
)

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), profileID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": services.NewProfileView(p)})
}

// UpdateProfile saves study preferences. Progress is reset and the roadmap must be regenerated.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input models.ProfileSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Profiles.UpdateSettings(c.Request.Context(), profileID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated and progress reset successfully",
		"user":    services.NewProfileView(p),
	})
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.Profiles.Delete(c.Request.Context(), profileID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted successfully"})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.Profiles.Dashboard(c.Request.Context(), profileID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) GetBadges(c *gin.Context) {
	badges, err := h.Profiles.Badges(c.Request.Context(), profileID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
