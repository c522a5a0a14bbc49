// Package analytics derives read-side views over current product and order
// data. Nothing here is persisted; every call recomputes from the store.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

const (
	TrendWindowDays    = 30
	AlertWindowDays    = 30
	ForecastWindowDays = 21
)

type TrendPoint struct {
	Date    string  `json:"date"` // "Jan 8" style label
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

type Alert struct {
	ProductID          string `json:"productId"`
	ProductName        string `json:"productName"`
	CurrentStock       int    `json:"currentStock"`
	ReorderLevel       int    `json:"reorderLevel"`
	EstimatedDepletion string `json:"estimatedDepletion"`
}

type Forecast struct {
	Product         string  `json:"product"`
	Week            string  `json:"week"`
	PredictedDemand int     `json:"predictedDemand"`
	Confidence      float64 `json:"confidence"`
}

type WasteEntry struct {
	Product    string  `json:"product"`
	Produced   int     `json:"produced"`
	Sold       int     `json:"sold"`
	Waste      int     `json:"waste"`
	Percentage float64 `json:"percentage"`
}

// Fixed projection confidences for Week 1..3. The forecast is deterministic
// arithmetic, not a model.
var weekConfidence = []float64{0.82, 0.79, 0.76}

type Engine struct {
	store inventory.Store
	now   func() time.Time
}

func NewEngine(store inventory.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock overrides the engine clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) SalesTrends(ctx context.Context) ([]TrendPoint, error) {
	since := e.now().AddDate(0, 0, -TrendWindowDays)
	orders, err := e.store.OrdersSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return computeSalesTrends(orders), nil
}

// computeSalesTrends groups by formatted day label in first-encountered
// order. Labels carry no year or month ordering, so orders from different
// months that format identically merge into one point.
func computeSalesTrends(orders []inventory.Order) []TrendPoint {
	idx := make(map[string]int)
	out := []TrendPoint{}
	for _, o := range orders {
		label := o.CreatedAt.Format("Jan 2")
		i, ok := idx[label]
		if !ok {
			i = len(out)
			idx[label] = i
			out = append(out, TrendPoint{Date: label})
		}
		out[i].Sales++
		out[i].Revenue += o.TotalPrice
	}
	return out
}

func (e *Engine) InventoryAlerts(ctx context.Context) ([]Alert, error) {
	since := e.now().AddDate(0, 0, -AlertWindowDays)

	var (
		products []inventory.Product
		orders   []inventory.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = e.store.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = e.store.OrdersSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return computeInventoryAlerts(products, orders), nil
}

func computeInventoryAlerts(products []inventory.Product, recent []inventory.Order) []Alert {
	soldByProduct := make(map[string]int)
	for _, o := range recent {
		soldByProduct[o.ProductID] += o.Quantity
	}

	alerts := []Alert{}
	for _, p := range products {
		if p.Quantity > p.ReorderLevel {
			continue
		}
		totalSold := soldByProduct[p.ID]
		avgDaily := float64(totalSold) / float64(AlertWindowDays)

		depletion := "N/A"
		if avgDaily > 0 {
			days := int(math.Ceil(float64(p.Quantity) / avgDaily))
			if days < 1 {
				days = 1
			}
			depletion = fmt.Sprintf("%d days", days)
		}
		alerts = append(alerts, Alert{
			ProductID:          p.ID,
			ProductName:        p.Name,
			CurrentStock:       p.Quantity,
			ReorderLevel:       p.ReorderLevel,
			EstimatedDepletion: depletion,
		})
	}
	return alerts
}

func (e *Engine) DemandForecast(ctx context.Context) ([]Forecast, error) {
	since := e.now().AddDate(0, 0, -ForecastWindowDays)
	orders, err := e.store.OrdersSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return computeDemandForecast(orders), nil
}

// computeDemandForecast spreads the window total evenly across three weeks
// with fixed, decaying confidences.
func computeDemandForecast(orders []inventory.Order) []Forecast {
	totals := make(map[string]int)
	var names []string // first-encountered order, maps don't keep one
	for _, o := range orders {
		if _, ok := totals[o.ProductName]; !ok {
			names = append(names, o.ProductName)
		}
		totals[o.ProductName] += o.Quantity
	}

	out := []Forecast{}
	for _, name := range names {
		weekly := int(math.Round(float64(totals[name]) / 3))
		for i := 0; i < 3; i++ {
			out = append(out, Forecast{
				Product:         name,
				Week:            fmt.Sprintf("Week %d", i+1),
				PredictedDemand: weekly,
				Confidence:      weekConfidence[i],
			})
		}
	}
	return out
}

func (e *Engine) WasteAnalysis(ctx context.Context) ([]WasteEntry, error) {
	var (
		products []inventory.Product
		orders   []inventory.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = e.store.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = e.store.ListOrders(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return computeWasteAnalysis(products, orders), nil
}

// computeWasteAnalysis keeps the upstream formula verbatim: produced is
// defined as quantity + sold, which makes waste cancel to zero. Kept for
// output compatibility rather than "fixed".
func computeWasteAnalysis(products []inventory.Product, orders []inventory.Order) []WasteEntry {
	soldByName := make(map[string]int)
	for _, o := range orders {
		soldByName[o.ProductName] += o.Quantity
	}

	out := []WasteEntry{}
	for _, p := range products {
		sold := soldByName[p.Name]
		produced := p.Quantity + sold
		waste := produced - sold - p.Quantity
		if waste < 0 {
			waste = 0
		}
		pct := 0.0
		if produced > 0 {
			pct = math.Round(float64(waste)/float64(produced)*100*100) / 100
		}
		out = append(out, WasteEntry{
			Product:    p.Name,
			Produced:   produced,
			Sold:       sold,
			Waste:      waste,
			Percentage: pct,
		})
	}
	return out
}
