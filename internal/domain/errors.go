package domain

import "fmt"

// Error kinds, stable across transports. Boundary layers key off these
// instead of inspecting error internals.
const (
	KindCartNotFound          = "CartNotFound"
	KindCartAlreadyExists     = "CartAlreadyExists"
	KindCartItemNotFound      = "CartItemNotFound"
	KindCartItemAlreadyExists = "CartItemAlreadyExists"
)

// Error is the closed set of domain outcomes other than success. Every
// repository and service call returns either a result or one of these;
// nothing in the domain panics.
type Error interface {
	error
	Kind() string
}

// CartNotFoundError reports that no cart exists for a user.
type CartNotFoundError struct {
	UserID string
}

func (e *CartNotFoundError) Error() string {
	return fmt.Sprintf("Cart from user_id %s not found", e.UserID)
}

func (e *CartNotFoundError) Kind() string { return KindCartNotFound }

// CartAlreadyExistsError reports that a cart for the user already exists.
type CartAlreadyExistsError struct {
	UserID string
}

func (e *CartAlreadyExistsError) Error() string {
	return fmt.Sprintf("Cart from user_id %s already exists", e.UserID)
}

func (e *CartAlreadyExistsError) Kind() string { return KindCartAlreadyExists }

// CartItemNotFoundError reports that a cart does not contain the product.
// A missing cart collapses to this same outcome for item operations.
type CartItemNotFoundError struct {
	ProductID string
}

func (e *CartItemNotFoundError) Error() string {
	return fmt.Sprintf("Item with product_id %s not found", e.ProductID)
}

func (e *CartItemNotFoundError) Kind() string { return KindCartItemNotFound }

// CartItemAlreadyExistsError reports that a cart already contains the product.
type CartItemAlreadyExistsError struct {
	ProductID string
}

func (e *CartItemAlreadyExistsError) Error() string {
	return fmt.Sprintf("Item with product_id %s already exists", e.ProductID)
}

func (e *CartItemAlreadyExistsError) Kind() string { return KindCartItemAlreadyExists }
