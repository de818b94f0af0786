package services

import (
	"context"
	"errors"
	"fmt"

	"lapak/internal/apperrors"
	"lapak/internal/models"
	"lapak/internal/repositories"
)

// PricedLine is an item snapshot with its store and the quantity being priced.
type PricedLine struct {
	Item     models.Item
	Store    models.Store
	Quantity int
}

// Aggregate groups lines by store and prices them.
// Groups appear in the order their store is first seen and items keep their input order.
// Each store's delivery fee is added once, and the returned total is the sum of the store totals.
func Aggregate(lines []PricedLine) ([]models.OrderDetail, int64) {
	details := make([]models.OrderDetail, 0)
	groupIndex := make(map[string]int)

	for _, line := range lines {
		idx, ok := groupIndex[line.Store.ID]
		if !ok {
			idx = len(details)
			groupIndex[line.Store.ID] = idx
			details = append(details, models.OrderDetail{
				StoreID:         line.Store.ID,
				StoreName:       line.Store.Name,
				DeliveryFee:     line.Store.DeliveryFee,
				StoreTotalPrice: line.Store.DeliveryFee,
				Items:           make([]models.ItemLine, 0, 1),
			})
		}

		subtotal := line.Item.Price * int64(line.Quantity)
		details[idx].Items = append(details[idx].Items, models.ItemLine{
			ItemID:   line.Item.ID,
			ItemName: line.Item.Name,
			Price:    line.Item.Price,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})
		details[idx].StoreTotalPrice += subtotal
	}

	var total int64
	for _, d := range details {
		total += d.StoreTotalPrice
	}
	return details, total
}

// itemReader is the part of ItemRepository the line resolver needs.
type itemReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Item, error)
}

// StoreLookup resolves stores by id. StoreRepository and cache.CachedStores satisfy it.
type StoreLookup interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
}

// resolveLines loads the current item and store of every line request.
// The first request whose item does not exist fails with ErrItemNotFound,
// and an item pointing at a missing store fails with ErrStoreNotFound.
func resolveLines(ctx context.Context, items itemReader, stores StoreLookup, requests []models.LineRequest) ([]PricedLine, error) {
	found, err := items.GetByIDs(ctx, uniqueItemIDs(requests))
	if err != nil {
		return nil, err
	}
	return priceLines(ctx, indexItems(found), stores, requests)
}

// priceLines pairs each request with an already loaded item and its store.
func priceLines(ctx context.Context, byID map[string]models.Item, stores StoreLookup, requests []models.LineRequest) ([]PricedLine, error) {
	storeByID := make(map[string]models.Store)
	lines := make([]PricedLine, 0, len(requests))
	for _, req := range requests {
		item, ok := byID[req.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", req.ItemID, apperrors.ErrItemNotFound)
		}

		store, ok := storeByID[item.StoreID]
		if !ok {
			s, err := stores.GetByID(ctx, item.StoreID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, fmt.Errorf("store %s of item %s: %w", item.StoreID, item.ID, apperrors.ErrStoreNotFound)
				}
				return nil, err
			}
			store = *s
			storeByID[item.StoreID] = store
		}

		lines = append(lines, PricedLine{Item: item, Store: store, Quantity: req.Quantity})
	}
	return lines, nil
}

func uniqueItemIDs(requests []models.LineRequest) []string {
	seen := make(map[string]struct{}, len(requests))
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.ItemID]; ok {
			continue
		}
		seen[req.ItemID] = struct{}{}
		ids = append(ids, req.ItemID)
	}
	return ids
}

func indexItems(items []models.Item) map[string]models.Item {
	byID := make(map[string]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}
