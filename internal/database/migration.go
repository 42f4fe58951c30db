package database

import (
	"fmt"

	"github.com/diego12655/cv-analyzer-pro/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AccessCode{},
		&models.Session{},
		&models.Analysis{},
		&models.RequestLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
