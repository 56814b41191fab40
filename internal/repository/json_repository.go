package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/domain"
)

// JSONRepository stores every cart in a single JSON document on disk.
// Each mutation reads the whole file, rewrites the state and writes the
// whole file back. The mutex serializes callers within this process only;
// there is no cross-process locking, so this backend must not be used
// where concurrent writers outside the process are possible. It exists
// for local development and tests.
type JSONRepository struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// NewJSONRepository returns a file-backed repository writing to path.
func NewJSONRepository(path string, log *zap.Logger) *JSONRepository {
	return &JSONRepository{path: path, log: log}
}

func (r *JSONRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCartLocked(userID)
}

func (r *JSONRepository) CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts, err := r.readAll()
	if err != nil {
		r.log.Error("read cart file", zap.Error(err))
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	for _, existing := range carts {
		if existing.UserID == cart.UserID {
			return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
		}
	}
	carts = append(carts, *cart)
	if err := r.writeAll(carts); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	return cart, nil
}

func (r *JSONRepository) GetCartItem(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.getCartLocked(userID)
	if err != nil {
		return nil, &domain.CartItemNotFoundError{ProductID: productID}
	}
	item, ok := cart.FindItem(productID)
	if !ok {
		return nil, &domain.CartItemNotFoundError{ProductID: productID}
	}
	return &item, nil
}

func (r *JSONRepository) AddCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.getCartLocked(userID)
	if err != nil {
		var notFound *domain.CartNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// First item for this user: provision the cart.
		cart = domain.NewCart(uuid.NewString(), userID, []domain.CartItem{item})
		return r.createCartLocked(cart)
	}
	if cart.HasItem(item.ProductID) {
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	cart.AddItem(item)
	if err := r.replaceCartLocked(cart); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	return cart, nil
}

func (r *JSONRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.getCartLocked(userID)
	if err != nil {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	if !cart.HasItem(productID) {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	kept := cart.Items[:0]
	for _, existing := range cart.Items {
		if existing.ProductID != productID {
			kept = append(kept, existing)
		}
	}
	cart.Items = kept
	if err := r.replaceCartLocked(cart); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	return nil
}

func (r *JSONRepository) UpdateCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.getCartLocked(userID)
	if err != nil {
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	if !cart.HasItem(item.ProductID) {
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i] = item
		}
	}
	if err := r.replaceCartLocked(cart); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	return cart, nil
}

func (r *JSONRepository) DeleteCart(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts, err := r.readAll()
	if err != nil {
		r.log.Error("read cart file", zap.Error(err))
		return &domain.CartNotFoundError{UserID: userID}
	}
	kept := carts[:0]
	found := false
	for _, existing := range carts {
		if existing.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return &domain.CartNotFoundError{UserID: userID}
	}
	if err := r.writeAll(kept); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return &domain.CartNotFoundError{UserID: userID}
	}
	return nil
}

// getCartLocked looks up one user's cart. Callers hold r.mu.
func (r *JSONRepository) getCartLocked(userID string) (*domain.Cart, error) {
	carts, err := r.readAll()
	if err != nil {
		r.log.Error("read cart file", zap.Error(err))
		return nil, &domain.CartNotFoundError{UserID: userID}
	}
	for _, cart := range carts {
		if cart.UserID == userID {
			return domain.NewCart(cart.ID, cart.UserID, cart.Items), nil
		}
	}
	return nil, &domain.CartNotFoundError{UserID: userID}
}

// createCartLocked appends a new cart without re-checking existence.
// Callers hold r.mu and have already established the cart is absent.
func (r *JSONRepository) createCartLocked(cart *domain.Cart) (*domain.Cart, error) {
	carts, err := r.readAll()
	if err != nil {
		r.log.Error("read cart file", zap.Error(err))
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	carts = append(carts, *cart)
	if err := r.writeAll(carts); err != nil {
		r.log.Error("write cart file", zap.Error(err))
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	return cart, nil
}

// replaceCartLocked swaps the stored cart for cart.UserID. Callers hold r.mu.
func (r *JSONRepository) replaceCartLocked(cart *domain.Cart) error {
	carts, err := r.readAll()
	if err != nil {
		return err
	}
	for i := range carts {
		if carts[i].UserID == cart.UserID {
			carts[i] = *cart
		}
	}
	return r.writeAll(carts)
}

func (r *JSONRepository) readAll() ([]domain.Cart, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Cart{}, nil
		}
		return nil, err
	}
	var carts []domain.Cart
	if err := json.Unmarshal(data, &carts); err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *JSONRepository) writeAll(carts []domain.Cart) error {
	data, err := json.MarshalIndent(carts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}
