package models

import "time"

// Item is a product listed by a store. Price is in minor currency units.
type Item struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"item_name" gorm:"type:varchar(50);not null"`
	Price     int64     `json:"price" gorm:"not null"`
	Stock     int       `json:"stock" gorm:"not null;check:chk_items_stock_non_negative,stock >= 0"`
	StoreID   string    `json:"store_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ItemFilter narrows an item listing. Nil/empty fields are not applied.
type ItemFilter struct {
	StoreID  string `query:"store_id" validate:"omitempty,uuid"`
	MinPrice *int64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *int64 `query:"max_price" validate:"omitempty,gte=0"`
	InStock  bool   `query:"in_stock"`
}
