package models

import "time"

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

type Coupon struct {
	ID           int64        `json:"id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
	Value        float64      `json:"value"`
	MaxUses      *int64       `json:"max_uses,omitempty"`
	UsesCount    int64        `json:"uses_count"`
	ValidFrom    time.Time    `json:"valid_from"`
	ValidTo      time.Time    `json:"valid_to"`
	Active       bool         `json:"active"`
}

// IsValid reports whether the coupon can be applied at the given instant.
// Pure function of coupon state; usage accounting happens at checkout.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.Active {
		return false
	}

	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return false
	}

	if c.MaxUses != nil && c.UsesCount >= *c.MaxUses {
		return false
	}

	return true
}

// Discount returns the amount to subtract from subtotal, never exceeding it.
func (c *Coupon) Discount(subtotal float64) float64 {
	var discount float64

	switch c.DiscountType {
	case DiscountTypePercent:
		discount = subtotal * c.Value / 100
	case DiscountTypeFixed:
		discount = c.Value
	}

	if discount > subtotal {
		return subtotal
	}

	return discount
}

type CreateCouponRequest struct {
	Code         string       `json:"code" validate:"required,min=3,max=20"`
	DiscountType DiscountType `json:"discount_type" validate:"required,oneof=percent fixed"`
	Value        float64      `json:"value" validate:"required,gt=0"`
	MaxUses      *int64       `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	ValidFrom    time.Time    `json:"valid_from" validate:"required"`
	ValidTo      time.Time    `json:"valid_to" validate:"required,gtfield=ValidFrom"`
	Active       bool         `json:"active"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,min=3,max=20"`
}

// CouponPreview is the storefront projection of a code against the
// current cart, before checkout consumes a use.
type CouponPreview struct {
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
	Discount     float64      `json:"discount"`
	Subtotal     float64      `json:"subtotal"`
	Total        float64      `json:"total"`
}
