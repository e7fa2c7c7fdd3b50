package service

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type AddressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

func (s *AddressService) CreateAddress(ctx context.Context, userID int64, req *models.AddressRequest) (*models.Address, error) {

	address := addressFromRequest(userID, req)

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, errors.DatabaseError("Failed to create address").WithError(err)
	}

	return address, nil
}

func (s *AddressService) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {

	addresses, err := s.repo.ListAddressesByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list addresses").WithError(err)
	}

	if addresses == nil {
		addresses = []models.Address{}
	}

	return addresses, nil
}

func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID int64, req *models.AddressRequest) (*models.Address, error) {

	existing, err := s.repo.GetAddressByID(ctx, addressID)
	if stderrors.Is(err, sql.ErrNoRows) || (err == nil && existing.UserID != userID) {
		return nil, errors.NotFoundError("Address not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load address").WithError(err)
	}

	address := addressFromRequest(userID, req)
	address.ID = addressID
	address.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateAddress(ctx, address); err != nil {
		return nil, errors.DatabaseError("Failed to update address").WithError(err)
	}

	return address, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID int64) error {

	err := s.repo.DeleteAddress(ctx, addressID, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Address not found")
	}

	if err != nil {
		return errors.DatabaseError("Failed to delete address").WithError(err)
	}

	return nil
}

func addressFromRequest(userID int64, req *models.AddressRequest) *models.Address {
	return &models.Address{
		UserID:     userID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}
