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
	"lapak/pkg/rabbitmq"

	log "github.com/sirupsen/logrus"
)

// EventPublisher sends order lifecycle events to the message broker.
type EventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// OrderService places orders, renders them and moves them through their statuses.
type OrderService struct {
	uow       repositories.UnitOfWork
	stores    StoreLookup
	publisher EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// NewOrderService creates a new OrderService.
// stores serves store lookups outside transactions (typically the store cache) and defaults to the store repository.
// publisher and orderMetrics may be nil.
func NewOrderService(
	uow repositories.UnitOfWork,
	stores StoreLookup,
	publisher EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *OrderService {
	if stores == nil {
		stores = uow.Repos().Stores
	}
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &OrderService{
		uow:       uow,
		stores:    stores,
		publisher: publisher,
		metrics:   orderMetrics,
		logger:    logger,
	}
}

// CreateOrder places an order for userID in a single transaction and returns it priced.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, requests []models.LineRequest) (*models.OrderView, error) {
	start := time.Now()

	var placed *placedOrder
	err := s.uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
		var err error
		placed, err = s.placeOrder(ctx, r, userID, requests)
		return err
	})
	if err != nil {
		s.metrics.RecordOrderFailed(apperrors.From(err).Code)
		return nil, err
	}

	s.orderPlaced(placed, start)
	return placed.view(), nil
}

// placedOrder is an order persisted inside a transaction together with the pricing it was placed at.
type placedOrder struct {
	order   *models.Order
	details []models.OrderDetail
}

func (p *placedOrder) view() *models.OrderView {
	return &models.OrderView{
		OrderID:    p.order.ID,
		Details:    p.details,
		TotalPrice: p.order.TotalPrice,
		Status:     p.order.Status,
	}
}

// placeOrder validates every request line against locked stock, persists the order and its lines,
// and only then decrements stock. It must run inside r's transaction.
func (s *OrderService) placeOrder(ctx context.Context, r *repositories.Registry, userID string, requests []models.LineRequest) (*placedOrder, error) {
	if len(requests) == 0 {
		return nil, apperrors.ErrEmptyItemList
	}
	for _, req := range requests {
		if req.ItemID == "" || req.Quantity <= 0 {
			return nil, fmt.Errorf("line %q x%d: %w", req.ItemID, req.Quantity, apperrors.ErrInvalidField)
		}
	}

	ids := uniqueItemIDs(requests)
	locked, err := r.Items.LockByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ordered items: %w", err)
	}
	lines, err := priceLines(ctx, indexItems(locked), r.Stores, requests)
	if err != nil {
		return nil, err
	}

	// An item listed on several lines is checked against the sum of its quantities.
	wanted := make(map[string]int, len(ids))
	for _, req := range requests {
		wanted[req.ItemID] += req.Quantity
	}
	for _, line := range lines {
		if wanted[line.Item.ID] > line.Item.Stock {
			return nil, fmt.Errorf("item %s wants %d, has %d: %w",
				line.Item.ID, wanted[line.Item.ID], line.Item.Stock, apperrors.ErrNotEnoughStock)
		}
	}

	details, total := Aggregate(lines)

	order := &models.Order{
		UserID:     userID,
		Status:     models.OrderStatusOrdered,
		TotalPrice: total,
		Lines:      make([]models.OrderLine, 0, len(requests)),
	}
	for i, req := range requests {
		order.Lines = append(order.Lines, models.OrderLine{
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
			Seq:      i,
		})
	}
	if err := r.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	for _, id := range ids {
		ok, err := r.Items.DecrementStock(ctx, id, wanted[id])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("item %s changed during placement: %w", id, apperrors.ErrNotEnoughStock)
		}
	}

	return &placedOrder{order: order, details: details}, nil
}

// orderPlaced records and announces an order after its transaction committed.
func (s *OrderService) orderPlaced(placed *placedOrder, start time.Time) {
	order := placed.order
	s.metrics.RecordOrderCreated(order.TotalPrice, time.Since(start))
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"lines":       len(order.Lines),
		"total_price": order.TotalPrice,
	}).Info("order placed")

	s.publish(rabbitmq.OrderEvent{
		Type:       rabbitmq.RoutingKeyOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *OrderService) publish(event rabbitmq.OrderEvent) {
	if s.publisher == nil {
		s.logger.WithField("type", event.Type).Debug("no event publisher configured, skipping order event")
		return
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"type":     event.Type,
			"order_id": event.OrderID,
		}).Warn("failed to publish order event")
	}
}

// GetOrder returns userID's order priced with the current item prices.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.OrderView, error) {
	order, err := s.uow.Repos().Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if order.UserID != userID {
		return nil, apperrors.ErrOrderNotOwned
	}
	return s.render(ctx, order)
}

func (s *OrderService) render(ctx context.Context, order *models.Order) (*models.OrderView, error) {
	requests := make([]models.LineRequest, 0, len(order.Lines))
	for _, line := range order.Lines {
		requests = append(requests, models.LineRequest{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	lines, err := resolveLines(ctx, s.uow.Repos().Items, s.stores, requests)
	if err != nil {
		return nil, fmt.Errorf("failed to render order %s: %w", order.ID, err)
	}
	details, total := Aggregate(lines)
	return &models.OrderView{
		OrderID:    order.ID,
		Details:    details,
		TotalPrice: total,
		Status:     order.Status,
	}, nil
}

// ListOrders returns userID's orders, newest first, with the totals they were placed at.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.OrderSummary, error) {
	orders, err := s.uow.Repos().Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, models.OrderSummary{
			OrderID:    o.ID,
			TotalPrice: o.TotalPrice,
			Status:     o.Status,
		})
	}
	return summaries, nil
}

// UpdateOrderStatus moves userID's order to status. Re-applying the current status fails with
// ErrInvalidOrderStatus; every other known status is accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, userID, orderID string, status models.OrderStatus) (models.OrderStatus, error) {
	if !status.Valid() {
		return "", fmt.Errorf("status %q: %w", status, apperrors.ErrInvalidField)
	}

	var previous models.OrderStatus
	err := s.uow.WithinTransaction(ctx, func(r *repositories.Registry) error {
		order, err := r.Orders.LockByID(ctx, orderID)
		if err != nil {
			return orderLookupError(err)
		}
		if order.UserID != userID {
			return apperrors.ErrOrderNotOwned
		}
		if !order.Status.CanTransition(status) {
			return apperrors.ErrInvalidOrderStatus
		}
		previous = order.Status
		return r.Orders.UpdateStatus(ctx, orderID, status)
	})
	if err != nil {
		return "", err
	}

	s.metrics.RecordStatusTransition(string(previous), string(status))
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	}).Info("order status changed")
	s.publish(rabbitmq.OrderEvent{
		Type:           rabbitmq.RoutingKeyOrderStatusChanged,
		OrderID:        orderID,
		UserID:         userID,
		Status:         string(status),
		PreviousStatus: string(previous),
		OccurredAt:     time.Now().UTC(),
	})
	return status, nil
}

func orderLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrOrderNotFound
	}
	return err
}
