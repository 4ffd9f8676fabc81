package migrations

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigratorRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, NewMigrator(db).Run())
	require.NoError(t, NewMigrator(db).Run())

	var count int64
	require.NoError(t, db.Model(&MigrationRecord{}).Count(&count).Error)
	assert.Equal(t, int64(len(GetMigrations())), count)

	for _, m := range CoreModels {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestActiveRoadmapIndex(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrator(db).Run())

	require.NoError(t, db.Create(&models.Roadmap{ProfileID: "p1", Status: models.RoadmapActive}).Error)
	assert.Error(t, db.Create(&models.Roadmap{ProfileID: "p1", Status: models.RoadmapActive}).Error)

	// Archived roadmaps are not constrained.
	assert.NoError(t, db.Create(&models.Roadmap{ProfileID: "p1", Status: models.RoadmapArchived}).Error)
	assert.NoError(t, db.Create(&models.Roadmap{ProfileID: "p1", Status: models.RoadmapArchived}).Error)
}

func TestDayAddressIsUnique(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrator(db).Run())

	rm := models.Roadmap{ProfileID: "p1", Status: models.RoadmapActive}
	require.NoError(t, db.Create(&rm).Error)

	require.NoError(t, db.Create(&models.RoadmapDay{RoadmapID: rm.ID, Month: 1, Week: 1, Day: 1}).Error)
	assert.Error(t, db.Create(&models.RoadmapDay{RoadmapID: rm.ID, Month: 1, Week: 1, Day: 1}).Error)
	assert.NoError(t, db.Create(&models.RoadmapDay{RoadmapID: rm.ID, Month: 1, Week: 2, Day: 1}).Error)
}
