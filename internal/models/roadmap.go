package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is one of the three daily sub-tasks.
type Category string

const (
	CategoryAptitude Category = "aptitude"
	CategoryDSA      Category = "dsa"
	CategoryCore     Category = "core"
)

// Categories lists the sub-task categories in display order.
var Categories = []Category{CategoryAptitude, CategoryDSA, CategoryCore}

// ParseCategory accepts the wire names "aptitude", "dsa" and "core".
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, slices.Contains(Categories, c)
}

// Flag is the resource marker recorded when the sub-task is done.
func (c Category) Flag() string {
	return completionFlagPrefix + string(c)
}

const completionFlagPrefix = "completed_"

// IsCompletionFlag reports whether a resource marker is one of the completed_* flags.
func IsCompletionFlag(s string) bool {
	return strings.HasPrefix(s, completionFlagPrefix)
}

type RoadmapStatus string

const (
	RoadmapActive   RoadmapStatus = "active"
	RoadmapArchived RoadmapStatus = "archived"
)

type Roadmap struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProfileID string        `gorm:"type:text;index;not null" json:"profileId"`
	Role      string        `json:"role"`
	Status    RoadmapStatus `gorm:"type:text;not null;default:'active'" json:"status"`

	Days []RoadmapDay `gorm:"foreignKey:RoadmapID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

func (r *Roadmap) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// DayAddress locates a day inside a roadmap.
type DayAddress struct {
	Month int `json:"month"`
	Week  int `json:"week"`
	Day   int `json:"day"`
}

// Less orders addresses by month, then week, then day.
func (a DayAddress) Less(b DayAddress) bool {
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Week != b.Week {
		return a.Week < b.Week
	}
	return a.Day < b.Day
}

// RoadmapDay is one schedulable day, stored flat and addressed by (roadmap, month, week, day).
type RoadmapDay struct {
	ID        string `gorm:"primaryKey;type:text" json:"id"`
	RoadmapID string `gorm:"type:text;not null;uniqueIndex:idx_roadmap_day_address,priority:1" json:"roadmapId"`
	Month     int    `gorm:"not null;uniqueIndex:idx_roadmap_day_address,priority:2" json:"month"`
	Week      int    `gorm:"not null;uniqueIndex:idx_roadmap_day_address,priority:3" json:"week"`
	Day       int    `gorm:"not null;uniqueIndex:idx_roadmap_day_address,priority:4" json:"day"`

	Title        string `json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	AptitudeTask string `json:"aptitudeTask"`
	DSATask      string `gorm:"column:dsa_task" json:"dsaTask"`
	CoreTask     string `json:"coreTask"`

	Resources   datatypes.JSONSlice[string] `json:"resources"`
	IsCompleted bool                        `gorm:"not null;default:false" json:"isCompleted"`
	CompletedAt *time.Time                  `json:"completedAt,omitempty"`

	// Version guards read-modify-write of Resources.
	Version int `gorm:"not null;default:0" json:"-"`
}

func (RoadmapDay) TableName() string {
	return "roadmap_days"
}

func (d *RoadmapDay) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Resources == nil {
		d.Resources = datatypes.JSONSlice[string]{}
	}
	return
}

func (d *RoadmapDay) Address() DayAddress {
	return DayAddress{Month: d.Month, Week: d.Week, Day: d.Day}
}

func (d *RoadmapDay) HasFlag(flag string) bool {
	return slices.Contains(d.Resources, flag)
}

// MarkDone adds the category's completion flag. It returns false if the flag was already present.
func (d *RoadmapDay) MarkDone(c Category) bool {
	flag := c.Flag()
	if d.HasFlag(flag) {
		return false
	}
	d.Resources = append(d.Resources, flag)
	return true
}

// AllDone reports whether all three completion flags are present.
func (d *RoadmapDay) AllDone() bool {
	for _, c := range Categories {
		if !d.HasFlag(c.Flag()) {
			return false
		}
	}
	return true
}

// RoadmapPlan is the nested months → weeks → days document, used both for generator
// output and for API responses.
type RoadmapPlan struct {
	Months []PlanMonth `json:"months"`
}

type PlanMonth struct {
	Month int        `json:"month"`
	Weeks []PlanWeek `json:"weeks"`
}

type PlanWeek struct {
	Week       int       `json:"week"`
	DailyTasks []PlanDay `json:"dailyTasks"`
}

type PlanDay struct {
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	AptitudeTask string   `json:"aptitudeTask"`
	DSATask      string   `json:"dsaTask"`
	CoreTask     string   `json:"coreTask"`
	Resources    []string `json:"resources"`
	IsCompleted  bool     `json:"isCompleted"`
}
