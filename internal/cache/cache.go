package cache

import (
	"context"
	"errors"

	"lapak/internal/models"
)

// StoreCache keeps store snapshots keyed by store id.
type StoreCache interface {
	Get(ctx context.Context, storeID string) (*models.Store, error)
	Set(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, storeID string) error
}

var ErrCacheMiss = errors.New("cache miss")
