package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, cartID int64, product *models.Product, quantity int64) error
	UpdateItemQuantity(ctx context.Context, cartID, productID, quantity int64) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// GetOrCreateCart is the idempotent lookup-or-insert keyed by user. The
// unique index on user_id resolves the race between two first requests.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {

	cart, err := r.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, user_id, created_at, updated_at`

	cart = &models.Cart{}

	err = r.DB.QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart.Items = []models.CartItem{}

	return cart, nil
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart := &models.Cart{}

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(dbCtx, cart.ID)
	if err != nil {
		return nil, err
	}

	cart.Items = items

	return cart, nil
}

func (r *cartRepository) getItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price,
		       p.name, COALESCE(p.images[1], '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := r.DB.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items := []models.CartItem{}

	for rows.Next() {
		var item models.CartItem

		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.ProductName, &item.Image)
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

// AddItem increments the quantity of an existing line or inserts a new one
// with the price snapshotted from the product. The unit_price of an
// existing line is deliberately left untouched.
func (r *cartRepository) AddItem(ctx context.Context, cartID int64, product *models.Product, quantity int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	if _, err := tx.ExecContext(dbCtx, query, cartID, product.ID, quantity, product.EffectivePrice()); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}

	return tx.Commit()
}

// UpdateItemQuantity sets the quantity of a line; zero removes it.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID, quantity int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		result sql.Result
		err    error
	)

	if quantity == 0 {
		result, err = r.DB.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	} else {
		result, err = r.DB.ExecContext(dbCtx, `UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`, quantity, cartID, productID)
	}

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
