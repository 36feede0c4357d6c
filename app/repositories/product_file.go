package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/metrics"
	"github.com/bazarromero/catalog/pkg/storage"
)

// CatalogFile is the document the file store keeps on its disk.
const CatalogFile = "catalog.json"

// FileProductRepository keeps the whole catalog as one JSON array. Every
// mutation is read-modify-write under a mutex and ends in a single Put, so
// a failed write leaves the previous catalog intact.
type FileProductRepository struct {
	disk storage.Disk
	path string
	mu   sync.RWMutex
}

func NewFileProductRepository(disk storage.Disk) *FileProductRepository {
	return &FileProductRepository{disk: disk, path: CatalogFile}
}

// fileProduct tolerates records written before Active existed.
type fileProduct struct {
	ID         int64   `json:"id"`
	Nombre     string  `json:"nombre"`
	Precio     float64 `json:"precio"`
	Categoria  string  `json:"categoria"`
	Disponible bool    `json:"disponible"`
	Img        string  `json:"img"`
	Active     *bool   `json:"active"`
}

func (r *FileProductRepository) load(ctx context.Context) ([]models.Product, error) {
	data, err := r.disk.Get(ctx, r.path)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw []fileProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	out := make([]models.Product, len(raw))
	for i, fp := range raw {
		out[i] = models.Product{
			ID:         fp.ID,
			Nombre:     fp.Nombre,
			Precio:     fp.Precio,
			Categoria:  fp.Categoria,
			Disponible: fp.Disponible,
			Img:        fp.Img,
			Active:     fp.Active == nil || *fp.Active,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FileProductRepository) save(ctx context.Context, products []models.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := r.disk.Put(ctx, r.path, data); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func nextID(products []models.Product) int64 {
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func indexOf(products []models.Product, id int64) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *FileProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("file", "list", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(ctx)
}

func (r *FileProductRepository) ListPublic(ctx context.Context) ([]models.Product, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return publicOnly(all), nil
}

func (r *FileProductRepository) GetByID(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("file", "get", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()

	products, err := r.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	if i := indexOf(products, id); i >= 0 {
		return products[i], nil
	}
	return models.Product{}, ErrProductNotFound
}

func (r *FileProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	defer metrics.ObserveDBQuery("file", "create", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = nextID(products)
	if err := r.save(ctx, append(products, p)); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *FileProductRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	defer metrics.ObserveDBQuery("file", "update", time.Now())
	return r.mutate(ctx, id, patch.Apply)
}

func (r *FileProductRepository) SoftDelete(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("file", "delete", time.Now())
	return r.mutate(ctx, id, func(p *models.Product) { p.Active = false })
}

func (r *FileProductRepository) mutate(ctx context.Context, id int64, fn func(*models.Product)) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}

	updated := products[i]
	fn(&updated)
	if updated == products[i] {
		return updated, nil
	}
	products[i] = updated
	if err := r.save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

func (r *FileProductRepository) HardDelete(ctx context.Context, id int64) (models.Product, error) {
	defer metrics.ObserveDBQuery("file", "delete", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	removed := products[i]
	if err := r.save(ctx, append(products[:i], products[i+1:]...)); err != nil {
		return models.Product{}, err
	}
	return removed, nil
}

func (r *FileProductRepository) ReplaceAll(ctx context.Context, products []models.Product) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("file", "replace", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	id := nextID(current)
	stored := make([]models.Product, len(products))
	for i, p := range products {
		p.ID = id
		id++
		stored[i] = p
	}
	if err := r.save(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}
