package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bazarromero/catalog/app/models"
)

// GormUserRepository stores admin accounts in the "users" table.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = 0
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Upsert writes users keeping their IDs.
func (r *GormUserRepository) Upsert(ctx context.Context, users []models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range users {
			if err := tx.Save(&users[i]).Error; err != nil {
				return fmt.Errorf("upsert user %q: %w", users[i].Username, err)
			}
		}
		return nil
	})
}
