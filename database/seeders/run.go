// Package seeders holds named database seed functions.
//
//	func init() {
//	    seeders.Register("admin", SeedAdmin)
//	}
//
// Run via CLI: catalog seed
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order, stopping
// on the first error.
func RunAll(ctx context.Context, db *gorm.DB, out io.Writer) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, db); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
