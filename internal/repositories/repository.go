package repositories

import (
	"context"
	"errors"

	"lapak/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
}

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// GetByIDs returns the items that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	// LockByIDs is GetByIDs with the rows locked until the surrounding transaction ends.
	LockByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	// DecrementStock subtracts quantity from the item's stock only if enough is left.
	// It reports false when the item is missing or short.
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
}

// CartRepository defines the interface for cart line data access.
type CartRepository interface {
	Get(ctx context.Context, userID, itemID string) (*models.CartLine, error)
	// Upsert creates the line or overwrites the quantity of the existing one.
	Upsert(ctx context.Context, line *models.CartLine) error
	Delete(ctx context.Context, userID, itemID string) error
	ListByUser(ctx context.Context, userID string) ([]models.CartLine, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order together with its lines.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// LockByID is GetByID with the order row locked until the surrounding transaction ends.
	LockByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}

// Registry bundles the repositories bound to one database handle.
type Registry struct {
	Users  UserRepository
	Stores StoreRepository
	Items  ItemRepository
	Carts  CartRepository
	Orders OrderRepository
}

// UnitOfWork hands out repositories, either on the shared handle or scoped to a transaction.
type UnitOfWork interface {
	Repos() *Registry
	// WithinTransaction runs fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(r *Registry) error) error
}
