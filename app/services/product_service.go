// Package services holds the catalog's use cases. Services validate and
// sanitize input, call repositories, and translate storage failures into
// apperror.ErrInternal so backend error text never reaches a client.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/app/requests"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/logger"
)

// ImportResult reports how many import candidates were stored and how many
// were dropped for failing validation.
type ImportResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

type ProductService struct {
	repo repositories.ProductRepository
}

func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// List returns the public listing, or every product when includeInactive.
func (s *ProductService) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)
	if includeInactive {
		products, err = s.repo.ListAll(ctx)
	} else {
		products, err = s.repo.ListPublic(ctx)
	}
	if err != nil {
		return nil, storeErr(ctx, "list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, storeErr(ctx, "get product", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in requests.ProductInput) (models.Product, error) {
	if errs := requests.ValidateProduct(in); len(errs) > 0 {
		return models.Product{}, apperror.NewValidation(errs...)
	}
	p, err := s.repo.Create(ctx, in.ToProduct())
	if err != nil {
		return models.Product{}, storeErr(ctx, "create product", err)
	}
	logger.WithCtx(ctx).Info("product created", "id", p.ID)
	return p, nil
}

// Update validates only the fields present in `in` and overlays them.
func (s *ProductService) Update(ctx context.Context, id int64, in requests.ProductInput) (models.Product, error) {
	if errs := requests.ValidateProductPatch(in); len(errs) > 0 {
		return models.Product{}, apperror.NewValidation(errs...)
	}
	p, err := s.repo.Update(ctx, id, in.ToPatch())
	if err != nil {
		return models.Product{}, storeErr(ctx, "update product", err)
	}
	return p, nil
}

func (s *ProductService) Deactivate(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return models.Product{}, storeErr(ctx, "deactivate product", err)
	}
	logger.WithCtx(ctx).Info("product deactivated", "id", id)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.repo.HardDelete(ctx, id)
	if err != nil {
		return models.Product{}, storeErr(ctx, "delete product", err)
	}
	logger.WithCtx(ctx).Info("product deleted", "id", id)
	return p, nil
}

// Import replaces the catalog with the valid items. Items that do not decode
// as an object or fail validation are counted as rejected and skipped.
func (s *ProductService) Import(ctx context.Context, items []json.RawMessage) (ImportResult, error) {
	accepted := make([]models.Product, 0, len(items))
	var res ImportResult

	for _, item := range items {
		var in requests.ProductInput
		if err := json.Unmarshal(item, &in); err != nil {
			res.Rejected++
			continue
		}
		if errs := requests.ValidateProduct(in); len(errs) > 0 {
			res.Rejected++
			continue
		}
		accepted = append(accepted, in.ToProduct())
	}

	stored, err := s.repo.ReplaceAll(ctx, accepted)
	if err != nil {
		return ImportResult{}, storeErr(ctx, "import catalog", err)
	}
	res.Accepted = len(stored)
	logger.WithCtx(ctx).Info("catalog imported", "accepted", res.Accepted, "rejected", res.Rejected)
	return res, nil
}

// storeErr keeps not-found errors and hides everything else behind
// ErrInternal after logging it.
func storeErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	logger.WithCtx(ctx).Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, apperror.ErrInternal)
}
