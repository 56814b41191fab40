package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/domain"
	"github.com/allan-almeida1/ecommerce/internal/service"
)

// CartHandler translates HTTP requests into cart service calls and domain
// outcomes back into status codes: not-found 404, already-exists 409,
// success without payload 204.
type CartHandler struct {
	service *service.CartService
	log     *zap.Logger
}

// NewCartHandler builds a handler over the given service.
func NewCartHandler(svc *service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{service: svc, log: log}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Amount    int    `json:"amount"`
}

type amountRequest struct {
	Amount int `json:"amount"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// GetItem handles GET /api/v1/cart/items/{product_id}.
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	productID := chi.URLParam(r, "product_id")
	item, err := h.service.GetCartItem(r.Context(), userID, productID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	var req cartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "ValidationError", "product_id is required")
		return
	}
	if req.Amount < 1 {
		respondError(w, http.StatusBadRequest, "ValidationError", "amount must be an integer greater than or equal to 1")
		return
	}
	cart, err := h.service.AddItemToCart(r.Context(), userID, domain.CartItem{ProductID: req.ProductID, Amount: req.Amount})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

// UpdateItem handles PUT /api/v1/cart/items/{product_id}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	productID := chi.URLParam(r, "product_id")
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount < 1 {
		respondError(w, http.StatusBadRequest, "ValidationError", "amount must be an integer greater than or equal to 1")
		return
	}
	cart, err := h.service.UpdateItemFromCart(r.Context(), userID, domain.CartItem{ProductID: productID, Amount: req.Amount})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/{product_id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	productID := chi.URLParam(r, "product_id")
	if err := h.service.RemoveItemFromCart(r.Context(), userID, productID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCart handles DELETE /api/v1/cart.
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}
	if err := h.service.DeleteCart(r.Context(), userID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondDomainError renders a typed domain error as its HTTP shape.
// Anything outside the domain taxonomy is a 500.
func (h *CartHandler) respondDomainError(w http.ResponseWriter, err error) {
	var domainErr domain.Error
	if !errors.As(err, &domainErr) {
		h.log.Error("unexpected service error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "InternalServerError", "Internal Server Error")
		return
	}
	switch domainErr.Kind() {
	case domain.KindCartNotFound, domain.KindCartItemNotFound:
		respondError(w, http.StatusNotFound, domainErr.Kind(), domainErr.Error())
	case domain.KindCartAlreadyExists, domain.KindCartItemAlreadyExists:
		respondError(w, http.StatusConflict, domainErr.Kind(), domainErr.Error())
	default:
		h.log.Error("unmapped domain error kind", zap.String("kind", domainErr.Kind()))
		respondError(w, http.StatusInternalServerError, "InternalServerError", "Internal Server Error")
	}
}

// decodeBody parses a JSON body, rejecting unknown fields. Returns false
// after writing the 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "ValidationError", "invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, errorResponse{Error: kind, Message: message})
}
