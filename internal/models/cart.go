package models

import "time"

type CartItem struct {
	ID        int64   `json:"id"`
	CartID    int64   `json:"-"`
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`

	// Joined from products for display only.
	ProductName string `json:"name,omitempty"`
	Image       string `json:"image,omitempty"`
}

func (i *CartItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart holds snapshot-priced lines. UserID is nil for guest carts.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) GetTotal() float64 {
	var total float64

	for i := range c.Items {
		total += c.Items[i].Subtotal()
	}

	return total
}

type CartView struct {
	ID    int64          `json:"id"`
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

type CartItemView struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
	Image     string  `json:"image,omitempty"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity" validate:"min=0"`
}
