// Package alerts holds the event-driven low-stock notifier. The synchronous
// /inventory-alerts endpoint stays the source of truth; this worker only
// reacts to order traffic so operators hear about a threshold crossing
// without polling.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-textile-inventory/internal/events"
	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
	kafkax "github.com/ariefcatur/go-textile-inventory/internal/kafka"
	"github.com/ariefcatur/go-textile-inventory/internal/redisx"
)

type Service struct {
	Store       inventory.Store
	Redis       *redis.Client
	Producer    *kafkax.Producer // publishes stock.low
	ServiceName string
}

// HandleOrderCreated is the consumer handler for order.created events.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderCreated {
		return nil
	}

	// dedup by event_id so redeliveries don't re-alert
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "alerts", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	product, err := s.Store.GetProduct(ctx, p.ProductID)
	if errors.Is(err, inventory.ErrProductNotFound) {
		// deleted since the order was placed, nothing to alert on
		return nil
	}
	if err != nil {
		return err
	}

	if product.Quantity > product.ReorderLevel {
		return nil
	}

	slog.Warn("stock at or below reorder level",
		slog.String("product_id", product.ID),
		slog.String("product", product.Name),
		slog.Int("quantity", product.Quantity),
		slog.Int("reorder_level", product.ReorderLevel))

	return s.publishStockLow(product, env.TraceID, env.CorrelationID)
}

func (s *Service) publishStockLow(p inventory.Product, trace, orderID string) error {
	if s.Producer == nil {
		return nil
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventStockLow,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(events.StockLowPayload{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
		}),
	}
	s.Producer.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventStockLow)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
