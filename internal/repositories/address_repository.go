package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type AddressRepository interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	GetAddressByID(ctx context.Context, id int64) (*models.Address, error)
	ListAddressesByUser(ctx context.Context, userID int64) ([]models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, id, userID int64) error
}

type addressRepository struct {
	DB *sql.DB
}

func NewAddressRepo(db *sql.DB) AddressRepository {
	return &addressRepository{DB: db}
}

func (r *addressRepository) CreateAddress(ctx context.Context, address *models.Address) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	// A new default displaces the previous one.
	if address.IsDefault {
		if _, err := tx.ExecContext(dbCtx, `UPDATE addresses SET is_default = FALSE WHERE user_id = $1`, address.UserID); err != nil {
			return fmt.Errorf("failed to clear default address: %w", err)
		}
	}

	query := `
		INSERT INTO addresses (user_id, label, line1, line2, city, state, postal_code, country, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at`

	err = tx.QueryRowContext(dbCtx, query,
		address.UserID, address.Label, address.Line1, address.Line2,
		address.City, address.State, address.PostalCode, address.Country, address.IsDefault).
		Scan(&address.ID, &address.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}

	return tx.Commit()
}

func (r *addressRepository) GetAddressByID(ctx context.Context, id int64) (*models.Address, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address := &models.Address{}

	query := `
		SELECT id, user_id, COALESCE(label, ''), line1, COALESCE(line2, ''), city, state, postal_code, country, is_default, created_at
		FROM addresses
		WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&address.ID, &address.UserID, &address.Label, &address.Line1, &address.Line2,
			&address.City, &address.State, &address.PostalCode, &address.Country, &address.IsDefault, &address.CreatedAt)
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (r *addressRepository) ListAddressesByUser(ctx context.Context, userID int64) ([]models.Address, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, COALESCE(label, ''), line1, COALESCE(line2, ''), city, state, postal_code, country, is_default, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var addresses []models.Address

	for rows.Next() {
		var address models.Address

		err := rows.Scan(&address.ID, &address.UserID, &address.Label, &address.Line1, &address.Line2,
			&address.City, &address.State, &address.PostalCode, &address.Country, &address.IsDefault, &address.CreatedAt)
		if err != nil {
			return nil, err
		}

		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

func (r *addressRepository) UpdateAddress(ctx context.Context, address *models.Address) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if address.IsDefault {
		if _, err := tx.ExecContext(dbCtx, `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`, address.UserID, address.ID); err != nil {
			return fmt.Errorf("failed to clear default address: %w", err)
		}
	}

	query := `
		UPDATE addresses
		SET label = $1, line1 = $2, line2 = $3, city = $4, state = $5, postal_code = $6, country = $7, is_default = $8
		WHERE id = $9 AND user_id = $10`

	result, err := tx.ExecContext(dbCtx, query,
		address.Label, address.Line1, address.Line2, address.City, address.State,
		address.PostalCode, address.Country, address.IsDefault, address.ID, address.UserID)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *addressRepository) DeleteAddress(ctx context.Context, id, userID int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
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
