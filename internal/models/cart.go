package models

import "time"

// CartLine is one (user, item) row of a user's cart. A row never holds quantity 0.
type CartLine struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)"`
	ItemID    string    `gorm:"primaryKey;type:varchar(36);index"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	Item      *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// CartView is the rendered cart.
type CartView struct {
	Details    []OrderDetail `json:"details"`
	TotalPrice int64         `json:"total_price"`
}
