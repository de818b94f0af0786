package services

import (
	"context"
	"errors"
	"fmt"

	"lapak/internal/apperrors"
	"lapak/internal/models"
	"lapak/internal/repositories"
)

// ItemService exposes item lookups to the catalogue endpoints.
type ItemService struct {
	items  repositories.ItemRepository
	stores StoreLookup
}

// NewItemService creates a new ItemService.
func NewItemService(items repositories.ItemRepository, stores StoreLookup) *ItemService {
	return &ItemService{
		items:  items,
		stores: stores,
	}
}

// ListItems returns the items matching filter. Filtering on an unknown store fails with ErrStoreNotFound.
func (s *ItemService) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("min_price above max_price: %w", apperrors.ErrInvalidField)
	}
	if filter.StoreID != "" {
		if _, err := s.stores.GetByID(ctx, filter.StoreID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.ErrStoreNotFound
			}
			return nil, err
		}
	}
	return s.items.List(ctx, filter)
}

// GetItem retrieves a single item by its ID.
func (s *ItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}
