package models

import "time"

// Store groups items for pricing; its delivery fee is charged once per order or cart view.
type Store struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"store_name" gorm:"type:varchar(100);uniqueIndex;not null"`
	DeliveryFee int64     `json:"delivery_fee" gorm:"not null;default:0"`
	OwnerID     string    `json:"owner_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
