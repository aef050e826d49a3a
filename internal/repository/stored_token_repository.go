package repository

import (
	"context"

	"github.com/fadilmartias/ats-portal/internal/model"
	"gorm.io/gorm"
)

type StoredTokenRepository struct {
	db *gorm.DB
}

func NewStoredTokenRepository(db *gorm.DB) *StoredTokenRepository {
	return &StoredTokenRepository{db}
}

func (r *StoredTokenRepository) Migrate() error {
	return r.db.AutoMigrate(&model.StoredToken{})
}

func (r *StoredTokenRepository) FindByKey(ctx context.Context, key string) (*model.StoredToken, error) {
	var t model.StoredToken
	err := r.db.WithContext(ctx).First(&t, "session_key = ?", key).Error
	return &t, err
}

// Save inserts the row or replaces the token of an existing key.
func (r *StoredTokenRepository) Save(ctx context.Context, t *model.StoredToken) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *StoredTokenRepository) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.StoredToken{}, "session_key = ?", key).Error
}
