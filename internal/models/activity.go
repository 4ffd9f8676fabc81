package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityTaskCompleted  ActivityType = "TASK_COMPLETED"
	ActivityDayCompleted   ActivityType = "DAY_COMPLETED"
	ActivityStreak         ActivityType = "STREAK"
	ActivityAchievement    ActivityType = "ACHIEVEMENT"
	ActivityRoadmapCreated ActivityType = "ROADMAP_CREATED"
	ActivityProfileReset   ActivityType = "PROFILE_RESET"
)

type UserActivity struct {
	ID        string       `gorm:"primaryKey;type:text" json:"id"`
	Type      ActivityType `gorm:"type:text;not null" json:"type"`
	ProfileID string       `gorm:"index;not null" json:"profileId"`
	TargetID  string       `gorm:"index" json:"targetId"` // Roadmap ID, badge ID, etc.
	Message   string       `json:"message"`
	CreatedAt time.Time    `gorm:"index" json:"createdAt"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

func (ua *UserActivity) BeforeCreate(tx *gorm.DB) (err error) {
	if ua.ID == "" {
		ua.ID = uuid.New().String()
	}
	if ua.CreatedAt.IsZero() {
		ua.CreatedAt = time.Now()
	}
	return
}
