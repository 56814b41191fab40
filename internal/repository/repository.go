package repository

import (
	"context"

	"github.com/allan-almeida1/ecommerce/internal/domain"
)

// CartRepository is the storage contract for carts. All implementations
// provide the same conflict semantics: absence and duplication surface as
// the typed domain errors, never as raw storage errors.
//
// Consumers define this interface, not the storage implementations.
type CartRepository interface {
	// GetCartByUserID returns the user's cart. Pure lookup, never mutates.
	GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error)

	// CreateCart stores a new cart. Fails with CartAlreadyExistsError if a
	// cart for cart.UserID exists; the existence check is atomic at the
	// storage layer.
	CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)

	// GetCartItem returns one item from the user's cart. A missing cart and
	// a missing item both yield CartItemNotFoundError.
	GetCartItem(ctx context.Context, userID, productID string) (*domain.CartItem, error)

	// AddCartItem appends item to the user's cart and returns the updated
	// cart. When the user has no cart yet, one is created containing exactly
	// this item. Fails with CartItemAlreadyExistsError if the product is
	// already in the cart.
	AddCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error)

	// RemoveCartItem deletes one item, preserving the order of the rest.
	RemoveCartItem(ctx context.Context, userID, productID string) error

	// UpdateCartItem replaces the matching item wholesale and returns the
	// updated cart.
	UpdateCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error)

	// DeleteCart removes the user's cart entirely.
	DeleteCart(ctx context.Context, userID string) error
}
