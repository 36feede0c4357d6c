// Package migrations registers the catalog schema with pkg/migration.
// Blank-import it wherever the runner is used.
package migrations

import (
	"gorm.io/gorm"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/migration"
)

func init() {
	migration.Register("20250101000000_create_products_table", &CreateProductsTable{})
	migration.Register("20250101000001_create_users_table", &CreateUsersTable{})
}

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}
