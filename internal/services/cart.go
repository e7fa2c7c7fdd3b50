package service

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type CartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{repo: repo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.CartView, error) {

	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cartToView(cart), nil
}

// AddItem snapshots the product's effective price into the line. Adding a
// product already in the cart bumps the quantity and keeps the original
// snapshot price.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *models.AddItemRequest) (*models.CartView, error) {

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Product not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if !product.IsActive {
		return nil, errors.NotFoundError("Product not found")
	}

	if product.Stock < quantity {
		return nil, errors.BadRequestError("Not enough stock for this product")
	}

	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if err := s.repo.AddItem(ctx, cart.ID, product, quantity); err != nil {
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets the quantity of a line; zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID int64, req *models.UpdateQuantityRequest) (*models.CartView, error) {

	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	err = s.repo.UpdateItemQuantity(ctx, cart.ID, req.ProductID, req.Quantity)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Item not in cart")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to update cart item").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*models.CartView, error) {
	return s.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 0})
}

func cartToView(cart *models.Cart) *models.CartView {

	view := &models.CartView{
		ID:    cart.ID,
		Items: make([]models.CartItemView, 0, len(cart.Items)),
		Total: cart.GetTotal(),
	}

	for i := range cart.Items {
		item := &cart.Items[i]

		view.Items = append(view.Items, models.CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
			Image:     item.Image,
		})
	}

	return view
}
