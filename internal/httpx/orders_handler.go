package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-textile-inventory/internal/events"
	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
	kafkax "github.com/ariefcatur/go-textile-inventory/internal/kafka"
	"github.com/ariefcatur/go-textile-inventory/internal/redisx"
)

type OrdersHandler struct {
	Svc      *inventory.Service
	Producer *kafkax.Producer
	Cache    *redis.Client
	Service  string
}

func (h *OrdersHandler) Register(r *chi.Mux, gate *AuthGate) {
	r.Group(func(g chi.Router) {
		g.Use(gate.Authenticate)
		g.Get("/orders", h.list)
		g.Post("/orders", h.create)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Svc.ListOrders(ctx, r.URL.Query().Get("buyerId"))
	if err != nil {
		writeError(w, err, "Failed to list orders")
		return
	}
	if orders == nil {
		orders = []inventory.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req inventory.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// The order is attributed to the verified identity unless the gate's
	// caller supplies an explicit buyer.
	if req.BuyerID == "" {
		if claims, ok := IdentityFrom(r.Context()); ok {
			req.BuyerID = claims.UserID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Svc.PlaceOrder(ctx, req)
	if err != nil {
		writeError(w, err, "Failed to create order")
		return
	}
	h.invalidateAnalytics(ctx)
	h.publishOrderCreated(r, ord)

	slog.Info("order created",
		slog.String("id", ord.ID),
		slog.String("product", ord.ProductName),
		slog.Int("quantity", ord.Quantity))
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Order created", "order": ord})
}

// publishOrderCreated emits the envelope consumed by the low-stock worker.
// Fire-and-forget: the order is already committed, event delivery is
// best-effort.
func (h *OrdersHandler) publishOrderCreated(r *http.Request, ord inventory.Order) {
	if h.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: ord.ID,
		Payload: kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:     ord.ID,
			ProductID:   ord.ProductID,
			ProductName: ord.ProductName,
			Quantity:    ord.Quantity,
			TotalPrice:  ord.TotalPrice,
			BuyerID:     ord.BuyerID,
		}),
	}
	h.Producer.Publish(events.PartitionKey(ord.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) invalidateAnalytics(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	_ = h.Cache.Del(ctx, redisx.AnalyticsKeys()...).Err()
}
