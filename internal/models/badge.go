package models

import "time"

type BadgeCategory string

const (
	BadgeCategoryStreak   BadgeCategory = "STREAK"
	BadgeCategoryHabit    BadgeCategory = "HABIT"
	BadgeCategoryPractice BadgeCategory = "PRACTICE"
)

// Known badge ids.
const (
	BadgeStreak7    = "streak_7"
	BadgeEarlyBird  = "early_bird"
	BadgeQuizMaster = "quiz_master"
	BadgeDSASolver  = "dsa_solver"
)

// Badge is a catalog entry. Condition names the rule that grants it; an empty
// Condition means no rule grants it yet and it is shown as locked.
type Badge struct {
	ID          string        `gorm:"primaryKey;type:text" json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"` // Name of the Lucide icon
	Category    BadgeCategory `gorm:"type:text" json:"category"`
	Condition   string        `json:"condition"` // e.g. "streak"
	Threshold   int           `json:"threshold"`
}

func (Badge) TableName() string {
	return "badges"
}

// ProfileBadge is one held badge. The composite key gives set semantics.
type ProfileBadge struct {
	ProfileID  string    `gorm:"primaryKey;type:text" json:"profileId"`
	BadgeID    string    `gorm:"primaryKey;type:text" json:"badgeId"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

func (ProfileBadge) TableName() string {
	return "profile_badges"
}
