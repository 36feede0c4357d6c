package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/logger"
)

var (
	managerMu sync.RWMutex
	disks     = map[string]Disk{}
)

// Connect registers the "local" disk rooted at DATA_DIR and, when S3_BUCKET
// is set, the "s3" disk.
func Connect(ctx context.Context) error {
	RegisterDisk("local", NewLocal(config.DataDir(), "/api"))

	if config.StorageS3Bucket() == "" {
		return nil
	}
	d, err := NewS3(ctx, S3Options{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
		BaseURL:  config.StorageS3URL(),
	})
	if err != nil {
		return err
	}
	RegisterDisk("s3", d)
	logger.Info("storage: s3 disk ready", "bucket", config.StorageS3Bucket())
	return nil
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk adds or replaces a named disk.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}
