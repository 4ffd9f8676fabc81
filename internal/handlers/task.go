package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
)

type CompleteTaskInput struct {
	RoadmapID string `json:"roadmapId" binding:"required"`
	Month     int    `json:"month" binding:"required,min=1"`
	Week      int    `json:"week" binding:"required,min=1"`
	Day       int    `json:"day" binding:"required,min=1"`
	TaskType  string `json:"taskType" binding:"required"`
}

func (h *Handler) CompleteTask(c *gin.Context) {
	var input CompleteTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	category, ok := models.ParseCategory(input.TaskType)
	if !ok {
		fail(c, apperrors.Validation("taskType must be one of aptitude, dsa, core"))
		return
	}

	res, err := h.Completion.CompleteSubtask(c.Request.Context(), services.CompleteSubtaskInput{
		ProfileID: profileID(c),
		RoadmapID: input.RoadmapID,
		Address:   models.DayAddress{Month: input.Month, Week: input.Week, Day: input.Day},
		Category:  category,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
