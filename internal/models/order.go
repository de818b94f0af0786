package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ORDERED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOrdered, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransition reports whether an order in status s may move to next.
// Only re-applying the current status is refused.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return next.Valid() && s != next
}

// Order is a placed order. TotalPrice is the total computed at placement.
type Order struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)"`
	UserID     string      `gorm:"type:varchar(36);index;not null"`
	Status     OrderStatus `gorm:"type:varchar(10);not null"`
	TotalPrice int64       `gorm:"not null;default:0"`
	Lines      []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time   `gorm:"index"`
	UpdatedAt  time.Time
}

// OrderLine records the quantity of one item in an order. Price and name are read live when rendering;
// Seq keeps the request order.
type OrderLine struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	OrderID  string `gorm:"type:varchar(36);index;not null"`
	ItemID   string `gorm:"type:varchar(36);index;not null"`
	Quantity int    `gorm:"not null"`
	Seq      int    `gorm:"not null"`
}

// LineRequest asks for quantity units of an item.
type LineRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// OrderView is the rendered order.
type OrderView struct {
	OrderID    string        `json:"order_id"`
	Details    []OrderDetail `json:"details"`
	TotalPrice int64         `json:"total_price"`
	Status     OrderStatus   `json:"status"`
}

// OrderSummary is the list entry for a user's orders.
type OrderSummary struct {
	OrderID    string      `json:"order_id"`
	TotalPrice int64       `json:"total_price"`
	Status     OrderStatus `json:"status"`
}
