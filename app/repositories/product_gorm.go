package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/metrics"
)

// GormProductRepository stores products in the "products" table.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "list", time.Now())

	var out []models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *GormProductRepository) ListPublic(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "list", time.Now())

	var out []models.Product
	err := r.db.WithContext(ctx).
		Where("active = ? AND disponible = ?", true, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list public products: %w", err)
	}
	return out, nil
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "get", time.Now())
	return r.find(r.db.WithContext(ctx), id)
}

func (r *GormProductRepository) find(db *gorm.DB, id int64) (models.Product, error) {
	var p models.Product
	err := db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "create", time.Now())

	p.ID = 0
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update reads then saves the full row without a lock; a concurrent update
// of the same product may overwrite this one.
func (r *GormProductRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "update", time.Now())

	db := r.db.WithContext(ctx)
	p, err := r.find(db, id)
	if err != nil {
		return models.Product{}, err
	}
	if patch.Empty() {
		return p, nil
	}
	patch.Apply(&p)
	if err := db.Save(&p).Error; err != nil {
		return models.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (r *GormProductRepository) SoftDelete(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "delete", time.Now())

	db := r.db.WithContext(ctx)
	p, err := r.find(db, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := db.Model(&p).Update("active", false).Error; err != nil {
		return models.Product{}, fmt.Errorf("deactivate product %d: %w", id, err)
	}
	p.Active = false
	return p, nil
}

func (r *GormProductRepository) HardDelete(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "delete", time.Now())

	var removed models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&removed, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("delete product %d: %w", id, err)
	}
	return removed, nil
}

func (r *GormProductRepository) ReplaceAll(ctx context.Context, products []models.Product) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("gorm", "replace", time.Now())

	stored := make([]models.Product, len(products))
	for i, p := range products {
		p.ID = 0
		stored[i] = p
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(stored) == 0 {
			return nil
		}
		return tx.CreateInBatches(&stored, 100).Error
	})
	if err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}
	return stored, nil
}

// Upsert writes products keeping their IDs, updating rows that exist.
// Used when syncing the JSON store into the database.
func (r *GormProductRepository) Upsert(ctx context.Context, products []models.Product) error {
	defer metrics.ObserveDBQuery("gorm", "upsert", time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range products {
			if err := tx.Save(&products[i]).Error; err != nil {
				return fmt.Errorf("upsert product %d: %w", products[i].ID, err)
			}
		}
		return nil
	})
}
