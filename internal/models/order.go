package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// orderTransitions is the full edge set of the status machine. Completed,
// cancelled and refunded are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusRefunded},
	OrderStatusShipped: {OrderStatusCompleted, OrderStatusRefunded},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type OrderItem struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	ID                int64       `json:"id"`
	UserID            *int64      `json:"user_id,omitempty"`
	Status            OrderStatus `json:"status"`
	TotalAmount       float64     `json:"total_amount"`
	ShippingAmount    float64     `json:"shipping_amount"`
	CouponID          *int64      `json:"coupon_id,omitempty"`
	PaymentMethod     string      `json:"payment_method"`
	ShippingAddressID int64       `json:"shipping_address_id"`
	StripePaymentID   string      `json:"stripe_payment_id,omitempty"`
	Items             []OrderItem `json:"items,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type CheckoutRequest struct {
	ShippingAddressID int64  `json:"shipping_address_id" validate:"required"`
	PaymentMethod     string `json:"payment_method" validate:"required,oneof=stripe cod"`
	CouponCode        string `json:"coupon_code,omitempty"`
}

type CheckoutResponse struct {
	OrderID      int64       `json:"order_id"`
	Status       OrderStatus `json:"status"`
	TotalAmount  float64     `json:"total_amount"`
	ClientSecret string      `json:"client_secret,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid shipped completed cancelled refunded"`
}

type OrderFilter struct {
	Status  OrderStatus
	Page    int
	PerPage int
}
