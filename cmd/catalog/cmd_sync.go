package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/database"
	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/migration"
	"github.com/bazarromero/catalog/pkg/storage"
)

type syncResult struct {
	Products int
	Users    int
}

// syncToDatabase upserts every product and user of the JSON store into db,
// keeping their IDs.
func syncToDatabase(ctx context.Context, disk storage.Disk, db *gorm.DB) (syncResult, error) {
	products, err := repositories.NewFileProductRepository(disk).ListAll(ctx)
	if err != nil {
		return syncResult{}, err
	}
	users, err := repositories.NewFileUserRepository(disk).All(ctx)
	if err != nil {
		return syncResult{}, err
	}

	if err := repositories.NewGormProductRepository(db).Upsert(ctx, products); err != nil {
		return syncResult{}, err
	}
	if err := repositories.NewGormUserRepository(db).Upsert(ctx, users); err != nil {
		return syncResult{}, err
	}

	// Explicit IDs leave postgres sequences behind.
	if db.Dialector.Name() == "postgres" {
		for _, table := range []string{"products", "users"} {
			q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
			if err := db.WithContext(ctx).Exec(q).Error; err != nil {
				return syncResult{}, fmt.Errorf("reset %s sequence: %w", table, err)
			}
		}
	}

	return syncResult{Products: len(products), Users: len(users)}, nil
}

// catalog sync
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy catalog.json and users.json into the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		if err := migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Run(); err != nil {
			return err
		}
		if err := storage.Connect(cmd.Context()); err != nil {
			return err
		}
		disk, err := storage.Use(config.CatalogDisk())
		if err != nil {
			return err
		}

		res, err := syncToDatabase(cmd.Context(), disk, database.DB)
		if err != nil {
			return err
		}
		logger.Info("sync complete", "products", res.Products, "users", res.Users)
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d products and %d users.\n", res.Products, res.Users)
		return nil
	},
}
