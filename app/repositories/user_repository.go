package repositories

import (
	"context"
	"fmt"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/apperror"
)

var ErrUserNotFound = fmt.Errorf("user: %w", apperror.ErrNotFound)

// UserRepository stores admin accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}
