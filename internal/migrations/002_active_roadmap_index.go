package migrations

import (
	"gorm.io/gorm"
)

// Migration002ActiveRoadmapIndex allows at most one active roadmap per profile.
// Partial indexes are supported by both PostgreSQL and SQLite.
func Migration002ActiveRoadmapIndex() Migration {
	return Migration{
		ID:        "002_active_roadmap_index",
		Name:      "Unique active roadmap per profile",
		DependsOn: []string{"001_create_core_tables"},
		Up: func(db *gorm.DB) error {
			return db.Exec(`
				CREATE UNIQUE INDEX IF NOT EXISTS idx_roadmaps_one_active
				ON roadmaps (profile_id) WHERE status = 'active'
			`).Error
		},
		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP INDEX IF EXISTS idx_roadmaps_one_active`).Error
		},
	}
}
