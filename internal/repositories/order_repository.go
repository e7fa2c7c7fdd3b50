package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type CheckoutParams struct {
	UserID            int64
	ShippingAddressID int64
	PaymentMethod     string
	CouponCode        string
	ShippingAmount    float64
	Now               time.Time
}

type OrderRepository interface {
	// CreateFromCart converts the user's cart into an order in a single
	// transaction: validates the address, locks and applies the coupon,
	// copies the snapshot-priced lines into order items and clears the
	// cart. Nothing is visible to readers until the commit.
	CreateFromCart(ctx context.Context, params CheckoutParams) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, next models.OrderStatus) (*models.Order, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
	SetStripePaymentID(ctx context.Context, id int64, paymentIntentID string) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) CreateFromCart(ctx context.Context, params CheckoutParams) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	// Address must belong to the requesting user.
	var addressOwner int64

	err = tx.QueryRowContext(dbCtx, `SELECT user_id FROM addresses WHERE id = $1`, params.ShippingAddressID).Scan(&addressOwner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && addressOwner != params.UserID) {
		return nil, ErrAddressNotOwned
	}

	if err != nil {
		return nil, fmt.Errorf("failed to check address: %w", err)
	}

	var cartID int64

	err = tx.QueryRowContext(dbCtx, `SELECT id FROM carts WHERE user_id = $1`, params.UserID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCart
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	itemRows, err := tx.QueryContext(dbCtx, `
		SELECT product_id, quantity, unit_price
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	var items []models.OrderItem
	var subtotal float64

	for itemRows.Next() {
		var item models.OrderItem

		if err := itemRows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		item.TotalPrice = item.UnitPrice * float64(item.Quantity)
		subtotal += item.TotalPrice
		items = append(items, item)
	}

	itemRows.Close()

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := subtotal

	// Coupon application: lock the row so two concurrent checkouts cannot
	// both pass the max_uses check, re-validate under the lock, then
	// increment inside this same transaction.
	var couponID *int64

	if params.CouponCode != "" {

		coupon := &models.Coupon{}

		err := tx.QueryRowContext(dbCtx, `
			SELECT id, code, discount_type, value, max_uses, uses_count, valid_from, valid_to, active
			FROM coupons
			WHERE code = $1
			FOR UPDATE`, params.CouponCode).
			Scan(&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.Value, &coupon.MaxUses,
				&coupon.UsesCount, &coupon.ValidFrom, &coupon.ValidTo, &coupon.Active)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponInvalid
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load coupon: %w", err)
		}

		if !coupon.IsValid(params.Now) {
			return nil, ErrCouponInvalid
		}

		if _, err := tx.ExecContext(dbCtx, `UPDATE coupons SET uses_count = uses_count + 1 WHERE id = $1`, coupon.ID); err != nil {
			return nil, fmt.Errorf("failed to increment coupon usage: %w", err)
		}

		total -= coupon.Discount(subtotal)
		couponID = &coupon.ID
	}

	total += params.ShippingAmount

	order := &models.Order{
		UserID:            &params.UserID,
		Status:            models.OrderStatusPending,
		TotalAmount:       total,
		ShippingAmount:    params.ShippingAmount,
		CouponID:          couponID,
		PaymentMethod:     params.PaymentMethod,
		ShippingAddressID: params.ShippingAddressID,
	}

	err = tx.QueryRowContext(dbCtx, `
		INSERT INTO orders (user_id, status, total_amount, shipping_amount, coupon_id, payment_method, shipping_address_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		order.UserID, order.Status, order.TotalAmount, order.ShippingAmount, order.CouponID, order.PaymentMethod, order.ShippingAddressID).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID

		err := tx.QueryRowContext(dbCtx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, created_at`,
			order.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice).
			Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	order.Items = items

	// Checkout consumes the cart.
	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

const orderColumns = `id, user_id, status, total_amount, shipping_amount, coupon_id, payment_method, shipping_address_id, COALESCE(stripe_payment_id, ''), created_at, updated_at`

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &order.ShippingAmount,
			&order.CouponID, &order.PaymentMethod, &order.ShippingAddressID, &order.StripePaymentID,
			&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(dbCtx, order.ID)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listOrders(dbCtx, query, total, userID, size, offset)
}

func (r *orderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where := ""
	countArgs := []any{}

	if filter.Status != "" {
		where = " WHERE status = $1"
		countArgs = append(countArgs, filter.Status)
	}

	var total int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	args := append(countArgs, filter.PerPage, offset)

	query := fmt.Sprintf(`SELECT `+orderColumns+`
		FROM orders%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	return r.listOrders(dbCtx, query, total, args...)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, total int64, args ...any) ([]models.Order, int64, error) {

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		var order models.Order

		err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &order.ShippingAmount,
			&order.CouponID, &order.PaymentMethod, &order.ShippingAddressID, &order.StripePaymentID,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}

		orders[i].Items = items
	}

	return orders, total, nil
}

// UpdateStatus moves an order along the documented edges; the current
// status is locked so concurrent transitions serialize.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, next models.OrderStatus) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var current models.OrderStatus

	err = tx.QueryRowContext(dbCtx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return nil, err
	}

	if !current.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, next, id); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, id)
}

// MarkPaid is the webhook-driven pending→paid transition. Returns false
// without error when the order is not pending; webhook retries and
// out-of-order deliveries are then acknowledged without mutation.
func (r *orderRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		models.OrderStatusPaid, id, models.OrderStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *orderRepository) SetStripePaymentID(ctx context.Context, id int64, paymentIntentID string) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	_, err := r.DB.ExecContext(dbCtx, `UPDATE orders SET stripe_payment_id = $1, updated_at = NOW() WHERE id = $2`, paymentIntentID, id)

	return err
}
