package cache

import (
	"context"
	"errors"

	"lapak/internal/models"

	log "github.com/sirupsen/logrus"
)

// StoreLookup resolves a store by id.
type StoreLookup interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
}

// CachedStores is a read-through StoreLookup. Cache failures fall back to next.
type CachedStores struct {
	next   StoreLookup
	cache  StoreCache
	logger *log.Entry
}

func NewCachedStores(next StoreLookup, cache StoreCache, logger *log.Entry) *CachedStores {
	if logger == nil {
		logger = log.New().WithField("component", "store-cache")
	}
	return &CachedStores{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (c *CachedStores) GetByID(ctx context.Context, id string) (*models.Store, error) {
	store, err := c.cache.Get(ctx, id)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.WithError(err).WithField("store_id", id).Warn("store cache read failed")
	}

	store, err = c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, store); err != nil {
		c.logger.WithError(err).WithField("store_id", id).Warn("store cache write failed")
	}
	return store, nil
}
