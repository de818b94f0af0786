package repositories

import (
	"context"
	"errors"
	"fmt"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// GetByID retrieves a store by its ID.
func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	return r.first(ctx, "id", id)
}

// GetByOwnerID retrieves the store owned by a user.
func (r *GORMStoreRepository) GetByOwnerID(ctx context.Context, ownerID string) (*models.Store, error) {
	return r.first(ctx, "owner_id", ownerID)
}

func (r *GORMStoreRepository) first(ctx context.Context, column, value string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store with %s %s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store by %s %s: %w", column, value, err)
	}
	return &store, nil
}

// Create creates a new store.
func (r *GORMStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}
