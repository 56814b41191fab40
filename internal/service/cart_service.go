// Package service exposes the cart operations to the transport layer
// while hiding the concrete repository choice.
package service

import (
	"context"

	"github.com/allan-almeida1/ecommerce/internal/domain"
	"github.com/allan-almeida1/ecommerce/internal/repository"
)

// CartService forwards each call to the injected repository unchanged.
// Validation belongs to the transport layer and conflict handling to the
// repository, so nothing is added here.
type CartService struct {
	repo repository.CartRepository
}

// NewCartService builds a service over the given repository.
func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// GetCart returns the user's cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.GetCartByUserID(ctx, userID)
}

// GetCartItem returns one item from the user's cart.
func (s *CartService) GetCartItem(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
	return s.repo.GetCartItem(ctx, userID, productID)
}

// AddItemToCart adds an item, creating the cart on first use, and returns
// the updated cart.
func (s *CartService) AddItemToCart(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	return s.repo.AddCartItem(ctx, userID, item)
}

// RemoveItemFromCart removes one item from the user's cart.
func (s *CartService) RemoveItemFromCart(ctx context.Context, userID, productID string) error {
	return s.repo.RemoveCartItem(ctx, userID, productID)
}

// UpdateItemFromCart replaces the matching item and returns the updated cart.
func (s *CartService) UpdateItemFromCart(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	return s.repo.UpdateCartItem(ctx, userID, item)
}

// DeleteCart removes the user's cart entirely.
func (s *CartService) DeleteCart(ctx context.Context, userID string) error {
	return s.repo.DeleteCart(ctx, userID)
}
