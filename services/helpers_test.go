package services

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/wedding-seating/database"
	"github.com/yeremiapane/wedding-seating/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// setupTestDB opens a private in-memory sqlite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, quietLogger()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func newGuest(id, groupID string, status models.RSVPStatus, events map[string]bool) models.Guest {
	g := models.Guest{
		ID:         id,
		TenantID:   "tenant-1",
		Name:       "Guest " + id,
		Tags:       datatypes.JSONSlice[string]{},
		RSVPStatus: status,
		RSVPEvents: datatypes.NewJSONType(events),
	}
	if groupID != "" {
		g.GroupID = strPtr(groupID)
	}
	return g
}

func ref(id string) models.GuestRef {
	return models.GuestRef{ID: id, Name: "Guest " + id, Tags: []string{}}
}

func roundTable(id string, capacity int) models.Table {
	return models.Table{
		ID:       id,
		Name:     "Table " + id,
		Capacity: capacity,
		Shape:    models.Round{Radius: 50},
		Guests:   []models.GuestRef{},
	}
}
