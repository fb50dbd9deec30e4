package db

import (
	"context"

	"github.com/ahmedoumar/storify/internal/models"
	"gorm.io/gorm"
)

// Migrate performs schema migrations for the persistent models.
func Migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.Story{},
	)
}
