package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
	"github.com/ariefcatur/go-textile-inventory/internal/redisx"
)

type ProductsHandler struct {
	Svc   *inventory.Service
	Cache *redis.Client
}

func (h *ProductsHandler) Register(r *chi.Mux, gate *AuthGate) {
	r.Get("/products", h.list)
	r.Group(func(g chi.Router) {
		g.Use(gate.Authenticate, gate.RequireRole("admin"))
		g.Post("/products", h.create)
		g.Delete("/products/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Svc.ListProducts(ctx)
	if err != nil {
		writeError(w, err, "Failed to list products")
		return
	}
	if ps == nil {
		ps = []inventory.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": ps})
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewProduct
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		writeError(w, err, "Failed to add product")
		return
	}
	h.invalidateAnalytics(ctx)

	slog.Info("product created", slog.String("id", p.ID), slog.String("name", p.Name))
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Product created", "product": p})
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		writeError(w, err, "Failed to delete product")
		return
	}
	h.invalidateAnalytics(ctx)

	slog.Info("product deleted", slog.String("id", id))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted",
		"product": map[string]string{"id": id},
	})
}

// Catalog writes shift the derived views, so drop whatever is cached.
func (h *ProductsHandler) invalidateAnalytics(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	_ = h.Cache.Del(ctx, redisx.AnalyticsKeys()...).Err()
}
