package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/auth"
)

// NewRouter assembles the HTTP surface: global middleware, the health
// probe and the authenticated cart routes.
func NewRouter(h *CartHandler, verifier auth.Verifier, requestTimeout time.Duration, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(AuthMiddleware(verifier, log))
		r.Get("/", h.GetCart)
		r.Delete("/", h.DeleteCart)
		r.Post("/items", h.AddItem)
		r.Get("/items/{product_id}", h.GetItem)
		r.Put("/items/{product_id}", h.UpdateItem)
		r.Delete("/items/{product_id}", h.RemoveItem)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "endpoint not found"})
	})

	return r
}
