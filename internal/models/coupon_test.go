package models_test

import (
	"testing"
	"time"

	"github.com/shopworks/storefront/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCouponIsValid(t *testing.T) {

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	maxUses := int64(10)

	base := models.Coupon{
		Code:         "SUMMER10",
		DiscountType: models.DiscountTypePercent,
		Value:        10,
		MaxUses:      &maxUses,
		UsesCount:    3,
		ValidFrom:    now.Add(-24 * time.Hour),
		ValidTo:      now.Add(24 * time.Hour),
		Active:       true,
	}

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
		want   bool
	}{
		{"valid coupon", func(c *models.Coupon) {}, true},
		{"inactive", func(c *models.Coupon) { c.Active = false }, false},
		{"before window", func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) }, false},
		{"after window", func(c *models.Coupon) { c.ValidTo = now.Add(-time.Hour) }, false},
		{"uses exhausted", func(c *models.Coupon) { c.UsesCount = maxUses }, false},
		{"uses over limit", func(c *models.Coupon) { c.UsesCount = maxUses + 5 }, false},
		{"unlimited uses", func(c *models.Coupon) { c.MaxUses = nil; c.UsesCount = 1000000 }, true},
		{"window boundary start", func(c *models.Coupon) { c.ValidFrom = now }, true},
		{"window boundary end", func(c *models.Coupon) { c.ValidTo = now }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := base
			tt.mutate(&coupon)

			assert.Equal(t, tt.want, coupon.IsValid(now))
		})
	}
}

func TestCouponDiscount(t *testing.T) {

	tests := []struct {
		name         string
		discountType models.DiscountType
		value        float64
		subtotal     float64
		want         float64
	}{
		{"ten percent", models.DiscountTypePercent, 10, 200, 20},
		{"hundred percent", models.DiscountTypePercent, 100, 50, 50},
		{"fixed amount", models.DiscountTypeFixed, 15, 100, 15},
		{"fixed exceeds subtotal", models.DiscountTypeFixed, 80, 50, 50},
		{"zero subtotal", models.DiscountTypeFixed, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := models.Coupon{DiscountType: tt.discountType, Value: tt.value}

			assert.InDelta(t, tt.want, coupon.Discount(tt.subtotal), 0.001)
		})
	}
}
