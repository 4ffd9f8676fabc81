package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyTime accumulates minutes per task category.
type StudyTime struct {
	Aptitude int `gorm:"not null;default:0" json:"aptitude"`
	DSA      int `gorm:"column:dsa;not null;default:0" json:"dsa"`
	Core     int `gorm:"not null;default:0" json:"core"`
}

// Profile is a user's account and progress record.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Image    string `json:"image"`
	Password string `json:"-"`

	// Study preferences, fed to roadmap generation
	TargetRole     string `json:"targetRole"`
	CoreSkill      string `json:"coreSkill"`
	CurrentLevel   string `json:"currentLevel"`
	DailyStudyTime int    `gorm:"default:60" json:"dailyStudyTime"` // minutes
	GoalTimeline   string `json:"goalTimeline"`

	// Progress
	Streak              int        `gorm:"not null;default:0" json:"streak"`
	LastStreakIncrement *time.Time `json:"lastStreakIncrement"`
	Points              int        `gorm:"not null;default:0" json:"points"`
	TotalStudyTime      StudyTime  `gorm:"embedded;embeddedPrefix:study_" json:"totalStudyTime"`

	Badges []ProfileBadge `gorm:"foreignKey:ProfileID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// BadgeIDs returns the held badge ids in unlock order.
func (p *Profile) BadgeIDs() []string {
	ids := make([]string, 0, len(p.Badges))
	for _, b := range p.Badges {
		ids = append(ids, b.BadgeID)
	}
	return ids
}

// HasBadge reports whether the badge is already held.
func (p *Profile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b.BadgeID == id {
			return true
		}
	}
	return false
}

// ProfileSettings are the user-editable study preferences. Saving them resets progress.
type ProfileSettings struct {
	Name           string `json:"name"`
	TargetRole     string `json:"targetRole"`
	CoreSkill      string `json:"coreSkill"`
	CurrentLevel   string `json:"currentLevel"`
	DailyStudyTime int    `json:"dailyStudyTime"`
	GoalTimeline   string `json:"goalTimeline"`
}
