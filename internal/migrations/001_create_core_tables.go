package migrations

import (
	"github.com/pavangundu/ai-helper/internal/models"
	"gorm.io/gorm"
)

// CoreModels are the tables owned by the application, in creation order.
var CoreModels = []interface{}{
	&models.Profile{},
	&models.Badge{},
	&models.ProfileBadge{},
	&models.Roadmap{},
	&models.RoadmapDay{},
	&models.UserActivity{},
}

// Migration001CreateCoreTables creates profiles, badges, roadmaps, days and activity.
// The (roadmap_id, month, week, day) unique index on roadmap_days comes from the model tags.
func Migration001CreateCoreTables() Migration {
	return Migration{
		ID:   "001_create_core_tables",
		Name: "Create profile, badge, roadmap and activity tables",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(CoreModels...)
		},
		Down: func(db *gorm.DB) error {
			for i := len(CoreModels) - 1; i >= 0; i-- {
				if err := db.Migrator().DropTable(CoreModels[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
