package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lapak/internal/apperrors"
	"lapak/internal/metrics"
	"lapak/internal/models"
	"lapak/internal/repositories"

	log "github.com/sirupsen/logrus"
)

// CartService keeps each user's cart and turns it into an order on checkout.
type CartService struct {
	uow     repositories.UnitOfWork
	orders  *OrderService
	stores  StoreLookup
	metrics *metrics.OrderMetrics
	logger  *log.Entry
}

// NewCartService creates a new CartService. Checkout places orders through orders.
func NewCartService(
	uow repositories.UnitOfWork,
	orders *OrderService,
	stores StoreLookup,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *CartService {
	if stores == nil {
		stores = uow.Repos().Stores
	}
	if logger == nil {
		logger = log.New().WithField("component", "cart-service")
	}
	return &CartService{
		uow:     uow,
		orders:  orders,
		stores:  stores,
		metrics: orderMetrics,
		logger:  logger,
	}
}

// AddOrUpdate sets the quantity of itemID in userID's cart and returns the whole cart.
// Quantity 0 removes the line; setting 0 on an absent line does nothing.
func (s *CartService) AddOrUpdate(ctx context.Context, userID, itemID string, quantity int) (*models.CartView, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, apperrors.ErrInvalidField)
	}

	var kind string
	err := s.uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
		if _, err := r.Items.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrItemNotFound
			}
			return err
		}

		existing, err := r.Carts.Get(ctx, userID, itemID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		switch {
		case quantity == 0 && existing == nil:
			return nil
		case quantity == 0:
			kind = "remove"
			return r.Carts.Delete(ctx, userID, itemID)
		case existing != nil:
			kind = "update"
			existing.Quantity = quantity
			return r.Carts.Upsert(ctx, existing)
		default:
			kind = "add"
			return r.Carts.Upsert(ctx, &models.CartLine{UserID: userID, ItemID: itemID, Quantity: quantity})
		}
	})
	if err != nil {
		return nil, err
	}

	if kind != "" {
		s.metrics.RecordCartMutation(kind)
		s.logger.WithFields(log.Fields{
			"user_id":  userID,
			"item_id":  itemID,
			"quantity": quantity,
			"change":   kind,
		}).Debug("cart line changed")
	}
	return s.GetCart(ctx, userID)
}

// GetCart returns userID's cart priced with the current item prices. An empty cart has no details and total 0.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	repos := s.uow.Repos()
	lines, err := repos.Carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	priced, err := resolveLines(ctx, repos.Items, s.stores, cartRequests(lines))
	if err != nil {
		return nil, fmt.Errorf("failed to render cart of user %s: %w", userID, err)
	}
	details, total := Aggregate(priced)
	return &models.CartView{Details: details, TotalPrice: total}, nil
}

// ClearCart removes every line of userID's cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.uow.Repos().Carts.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.metrics.RecordCartMutation("clear")
	return nil
}

// Checkout places an order for every line in userID's cart and empties the cart.
// Placement and clearing share one transaction, so a failed checkout leaves the cart untouched.
func (s *CartService) Checkout(ctx context.Context, userID string) (*models.OrderView, error) {
	start := time.Now()

	var placed *placedOrder
	err := s.uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
		lines, err := r.Carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperrors.ErrEmptyCart
		}

		placed, err = s.orders.placeOrder(ctx, r, userID, cartRequests(lines))
		if err != nil {
			return err
		}
		return r.Carts.DeleteByUser(ctx, userID)
	})
	if err != nil {
		code := apperrors.From(err).Code
		s.metrics.RecordCheckout(code)
		s.logger.WithError(err).WithField("user_id", userID).Info("checkout rejected")
		return nil, err
	}

	s.metrics.RecordCheckout("success")
	s.orders.orderPlaced(placed, start)
	return placed.view(), nil
}

func cartRequests(lines []models.CartLine) []models.LineRequest {
	requests := make([]models.LineRequest, 0, len(lines))
	for _, line := range lines {
		requests = append(requests, models.LineRequest{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return requests
}
