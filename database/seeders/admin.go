package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates ADMIN_USERNAME / ADMIN_PASSWORD when the users table
// is empty.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	created, err := services.SeedAdmin(ctx, repositories.NewGormUserRepository(db), config.AdminUsername(), config.AdminPassword())
	if err != nil {
		return err
	}
	if created {
		logger.Warn("default admin created, change its password", "username", config.AdminUsername())
	}
	return nil
}
