package models

// ItemLine is one priced line inside a store group.
type ItemLine struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

// OrderDetail is the per-store group of a cart or order view.
// StoreTotalPrice is the sum of the item subtotals plus DeliveryFee.
type OrderDetail struct {
	StoreID         string     `json:"store_id"`
	StoreName       string     `json:"store_name"`
	DeliveryFee     int64      `json:"delivery_fee"`
	StoreTotalPrice int64      `json:"store_total_price"`
	Items           []ItemLine `json:"items"`
}
