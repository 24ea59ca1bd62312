package database

import (
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wedding-seating/models"
	"gorm.io/gorm"
)

// AutoMigrate creates the directory tables read by the seating engine and the
// arrangements document table it writes.
func AutoMigrate(db *gorm.DB, log logrus.FieldLogger) error {
	err := db.AutoMigrate(
		&models.Event{},
		&models.Group{},
		&models.Guest{},
		&models.ArrangementDocument{},
	)
	if err != nil {
		return err
	}
	log.Info("AutoMigrate completed.")
	return nil
}
