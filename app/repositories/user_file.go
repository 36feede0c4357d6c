package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/storage"
)

// UsersFile is the document holding admin accounts.
const UsersFile = "users.json"

// FileUserRepository keeps admin accounts as a JSON array on a disk.
type FileUserRepository struct {
	disk storage.Disk
	path string
	mu   sync.RWMutex
}

func NewFileUserRepository(disk storage.Disk) *FileUserRepository {
	return &FileUserRepository{disk: disk, path: UsersFile}
}

func (r *FileUserRepository) load(ctx context.Context) ([]models.User, error) {
	data, err := r.disk.Get(ctx, r.path)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *FileUserRepository) save(ctx context.Context, users []models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := r.disk.Put(ctx, r.path, data); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

// All returns every stored account, hashes included. Used by `catalog sync`.
func (r *FileUserRepository) All(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(ctx)
}

func (r *FileUserRepository) find(ctx context.Context, match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.load(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *FileUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.Username == username })
}

func (r *FileUserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

func (r *FileUserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return models.User{}, err
	}
	var max int64
	for _, existing := range users {
		if existing.Username == u.Username {
			return models.User{}, fmt.Errorf("user %q already exists", u.Username)
		}
		if existing.ID > max {
			max = existing.ID
		}
	}
	u.ID = max + 1
	if err := r.save(ctx, append(users, u)); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *FileUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == id {
			users[i].Password = hash
			return r.save(ctx, users)
		}
	}
	return ErrUserNotFound
}

func (r *FileUserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}
