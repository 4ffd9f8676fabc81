package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/utils"
)

// roadmapParam reads the :id path parameter. Anything that is not a UUID cannot name a roadmap.
func roadmapParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !utils.IsUUID(id) {
		fail(c, apperrors.NotFound("Roadmap not found"))
		return "", false
	}
	return id, true
}

// GenerateRoadmap creates the caller's roadmap, or returns the active one if it exists.
func (h *Handler) GenerateRoadmap(c *gin.Context) {
	view, created, err := h.Roadmaps.Generate(c.Request.Context(), profileID(c))
	if err != nil {
		fail(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Roadmap already exists",
			"roadmapId": view.ID,
			"roadmap":   view,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Roadmap generated successfully",
		"roadmapId": view.ID,
		"roadmap":   view,
	})
}

func (h *Handler) GetRoadmap(c *gin.Context) {
	view, err := h.Roadmaps.Active(c.Request.Context(), profileID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roadmap":          view,
		"percentCompleted": view.PercentCompleted,
	})
}

func (h *Handler) GetProgress(c *gin.Context) {
	id, ok := roadmapParam(c)
	if !ok {
		return
	}
	p, err := h.Roadmaps.GetProgress(c.Request.Context(), profileID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetCurrentTask returns the first incomplete day; currentTask is null when all are done.
func (h *Handler) GetCurrentTask(c *gin.Context) {
	id, ok := roadmapParam(c)
	if !ok {
		return
	}
	task, err := h.Roadmaps.CurrentTask(c.Request.Context(), profileID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentTask": task})
}
