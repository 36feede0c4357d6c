// Package migration runs and tracks schema migrations.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20250101000000_create_products_table", &CreateProductsTable{})
//	}
//
// and run from the CLI with `catalog migrate` / `catalog migrate:rollback`.
package migration

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bazarromero/catalog/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "catalog_migrations" }

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration to the global registry. name should start with
// a timestamp; pending migrations run in name order.
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

// Status is the state of one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New creates a Runner printing progress to stdout.
func New(db *gorm.DB) *Runner {
	return &Runner{db: db, out: os.Stdout}
}

// WithOutput redirects progress lines.
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.out = w
	return r
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) ran() (map[string]migrationRecord, error) {
	var records []migrationRecord
	if err := r.db.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make(map[string]migrationRecord, len(records))
	for _, rec := range records {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the migrations that have not run yet, in name order.
func (r *Runner) Pending() ([]registeredMigration, error) {
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}

	var pending []registeredMigration
	for _, reg := range registry {
		if _, ok := ran[reg.name]; !ok {
			pending = append(pending, reg)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].name < pending[j].name
	})
	return pending, nil
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.Pending()
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	batch, err := r.lastBatch()
	if err != nil {
		return err
	}
	batch++

	for _, reg := range pending {
		logger.Info("migration: running", "name", reg.name)
		if err := reg.m.Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.db.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		fmt.Fprintf(r.out, "  Migrated:  %s\n", reg.name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses all migrations from the most recent batch.
func (r *Runner) Rollback() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	batch, err := r.lastBatch()
	if err != nil {
		return err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return err
	}

	regMap := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		regMap[reg.name] = reg.m
	}

	for _, rec := range records {
		m, ok := regMap[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  Rolled back:  %s\n", rec.Name)
	}
	return nil
}

// Statuses reports every registered migration in name order.
func (r *Runner) Statuses() ([]Status, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, err
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(registry))
	for _, reg := range registry {
		rec, ok := ran[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Status prints Statuses as a table.
func (r *Runner) Status() error {
	statuses, err := r.Statuses()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 80))
	for _, s := range statuses {
		if s.Ran {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", s.Name, "Ran", s.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", s.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch() (int, error) {
	var maxBatch struct{ Max int }
	err := r.db.Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&maxBatch).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return maxBatch.Max, nil
}
