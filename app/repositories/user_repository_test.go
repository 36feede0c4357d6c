package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/storage"
)

func TestUserRepositoryContract(t *testing.T) {
	backends := map[string]func(t *testing.T) UserRepository{
		"file": func(t *testing.T) UserRepository {
			return NewFileUserRepository(storage.NewLocal(t.TempDir(), ""))
		},
		"gorm": func(t *testing.T) UserRepository {
			return NewGormUserRepository(openTestDB(t))
		},
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			created, err := repo.Create(ctx, models.User{Username: "admin", Password: "hash-1"})
			require.NoError(t, err)
			assert.NotZero(t, created.ID)

			_, err = repo.Create(ctx, models.User{Username: "admin", Password: "hash-2"})
			assert.Error(t, err)

			byName, err := repo.FindByUsername(ctx, "admin")
			require.NoError(t, err)
			assert.Equal(t, created, byName)

			require.NoError(t, repo.UpdatePassword(ctx, created.ID, "hash-3"))
			byID, err := repo.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "hash-3", byID.Password)

			_, err = repo.FindByUsername(ctx, "ghost")
			assert.ErrorIs(t, err, ErrUserNotFound)
			assert.ErrorIs(t, repo.UpdatePassword(ctx, 999, "x"), ErrUserNotFound)

			n, err = repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}
