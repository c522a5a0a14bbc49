package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-textile-inventory/internal/analytics"
	"github.com/ariefcatur/go-textile-inventory/internal/redisx"
)

type AnalyticsHandler struct {
	Engine *analytics.Engine
	Cache  *redis.Client
}

func (h *AnalyticsHandler) Register(r *chi.Mux) {
	r.Get("/sales-trends", h.salesTrends)
	r.Get("/inventory-alerts", h.inventoryAlerts)
	r.Get("/demand-forecasts", h.demandForecasts)
	r.Get("/waste-analysis", h.wasteAnalysis)
}

func (h *AnalyticsHandler) salesTrends(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, redisx.AnalyticsSalesTrends, "Failed to compute sales trends", func(ctx context.Context) (any, error) {
		trends, err := h.Engine.SalesTrends(ctx)
		return map[string]any{"salesTrends": trends}, err
	})
}

func (h *AnalyticsHandler) inventoryAlerts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, redisx.AnalyticsInventoryAlerts, "Failed to compute inventory alerts", func(ctx context.Context) (any, error) {
		alerts, err := h.Engine.InventoryAlerts(ctx)
		return map[string]any{"inventoryAlerts": alerts}, err
	})
}

func (h *AnalyticsHandler) demandForecasts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, redisx.AnalyticsDemandForecasts, "Failed to compute demand forecasts", func(ctx context.Context) (any, error) {
		forecasts, err := h.Engine.DemandForecast(ctx)
		return map[string]any{"forecasts": forecasts}, err
	})
}

func (h *AnalyticsHandler) wasteAnalysis(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, redisx.AnalyticsWasteAnalysis, "Failed to compute waste analysis", func(ctx context.Context) (any, error) {
		waste, err := h.Engine.WasteAnalysis(ctx)
		return map[string]any{"wasteData": waste}, err
	})
}

// serve is cache-aside: hit returns the cached body untouched, miss computes,
// stores with a short TTL and returns. Writes invalidate these keys, the TTL
// only bounds staleness across replicas.
func (h *AnalyticsHandler) serve(w http.ResponseWriter, r *http.Request, name, fallback string, compute func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyAnalytics, name)
	if h.Cache != nil {
		if s, err := h.Cache.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	body, err := compute(ctx)
	if err != nil {
		writeError(w, err, fallback)
		return
	}
	b, err := json.Marshal(body)
	if err != nil {
		writeError(w, err, fallback)
		return
	}
	if h.Cache != nil {
		_ = h.Cache.Set(ctx, key, b, redisx.TTLAnalytics).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
