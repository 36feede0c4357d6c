// Package repositories persists products and admin users. Two backends
// share each interface: JSON documents on a storage disk, and gorm.
package repositories

import (
	"context"
	"fmt"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/apperror"
)

var ErrProductNotFound = fmt.Errorf("product: %w", apperror.ErrNotFound)

// ProductRepository is the catalog store. Inputs are already validated and
// sanitized; IDs are always assigned by the store.
type ProductRepository interface {
	// ListAll returns every product, active or not, ordered by ID.
	ListAll(ctx context.Context) ([]models.Product, error)

	// ListPublic returns products that are both active and disponible.
	ListPublic(ctx context.Context) ([]models.Product, error)

	GetByID(ctx context.Context, id int64) (models.Product, error)

	// Create stores p under a fresh ID and returns the stored record.
	Create(ctx context.Context, p models.Product) (models.Product, error)

	// Update overlays patch onto the stored record. Concurrent updates of the
	// same product are last-write-wins.
	Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)

	// SoftDelete sets Active=false and returns the updated record.
	SoftDelete(ctx context.Context, id int64) (models.Product, error)

	// HardDelete removes the record and returns it as it was stored.
	HardDelete(ctx context.Context, id int64) (models.Product, error)

	// ReplaceAll swaps the whole catalog for products, all or nothing, and
	// returns the stored records with their new IDs.
	ReplaceAll(ctx context.Context, products []models.Product) ([]models.Product, error)
}

func publicOnly(all []models.Product) []models.Product {
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.Public() {
			out = append(out, p)
		}
	}
	return out
}
