package seeds

import (
	"github.com/pavangundu/ai-helper/internal/services"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedBadges writes the badge catalog into the badges table. Existing rows are
// refreshed so renamed badges pick up their new text.
func SeedBadges(db *gorm.DB) error {
	logger.Info().Int("count", len(services.BadgeCatalog)).Msg("Seeding badge catalog")

	for _, b := range services.BadgeCatalog {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "category", "condition", "threshold"}),
		}).Create(&b).Error
		if err != nil {
			logger.Error().Err(err).Str("badge", b.ID).Msg("Failed to seed badge")
			return err
		}
	}
	return nil
}
