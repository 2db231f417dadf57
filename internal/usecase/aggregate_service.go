package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/quotesync/backend/internal/domain"
)

// AggregateService recomputes product-level price aggregates from the full
// current quote set. It runs as the final step of every sync and can be
// invoked standalone as a repair operation; re-running it with unchanged
// quotes produces identical values.
type AggregateService struct {
	gateway domain.StoreGateway
	opts    BatchOptions
}

// NewAggregateService creates an aggregation service.
func NewAggregateService(gateway domain.StoreGateway, opts BatchOptions) *AggregateService {
	return &AggregateService{gateway: gateway, opts: opts}
}

// productStats is one product's recomputed aggregate set.
type productStats struct {
	productID          string
	supplierCount      int
	minPrice           float64
	avgPrice           float64
	cheapestSupplierID string
}

// bestPriceWrite is one quote flag write.
type bestPriceWrite struct {
	quoteID string
	best    bool
}

// Run fetches all quotes, groups them by product (only positive adjusted
// prices contribute), writes the aggregates back to each product and reflags
// every quote's best-price marker.
//
// The cheapest supplier tie-break is first-encountered in fetch order, which
// the remote store does not guarantee stable across runs.
func (s *AggregateService) Run(ctx context.Context) (*domain.AggregateSummary, error) {
	summary := &domain.AggregateSummary{
		RunID:     "agg_" + uuid.New().String(),
		StartedAt: time.Now(),
		Errors:    []string{},
	}

	quotes, err := s.gateway.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading quotes: %w", err)
	}

	groups := make(map[string][]domain.Quote)
	var order []string
	var excluded []domain.Quote
	for _, q := range quotes {
		if q.AdjustedPrice <= 0 {
			excluded = append(excluded, q)
			continue
		}
		if _, seen := groups[q.ProductID]; !seen {
			order = append(order, q.ProductID)
		}
		groups[q.ProductID] = append(groups[q.ProductID], q)
	}

	log.Printf("[Aggregate] %s: %d quotes, %d product groups, %d excluded",
		summary.RunID, len(quotes), len(groups), len(excluded))

	var (
		stats []productStats
		flags []bestPriceWrite
	)
	for _, productID := range order {
		group := groups[productID]

		min := group[0].AdjustedPrice
		sum := 0.0
		for _, q := range group {
			if q.AdjustedPrice < min {
				min = q.AdjustedPrice
			}
			sum += q.AdjustedPrice
		}
		cheapest := ""
		for _, q := range group {
			if q.AdjustedPrice == min {
				cheapest = q.SupplierID
				break
			}
		}

		stats = append(stats, productStats{
			productID:          productID,
			supplierCount:      len(group),
			minPrice:           min,
			avgPrice:           round2(sum / float64(len(group))),
			cheapestSupplierID: cheapest,
		})
		for _, q := range group {
			flags = append(flags, bestPriceWrite{quoteID: q.ID, best: q.AdjustedPrice == min})
		}
	}
	for _, q := range excluded {
		if q.IsBestPrice {
			flags = append(flags, bestPriceWrite{quoteID: q.ID, best: false})
		}
	}

	results, errs := RunBatch(ctx, stats, s.opts, func(ctx context.Context, st productStats) (struct{}, error) {
		return struct{}{}, s.gateway.UpdateProduct(ctx, st.productID, map[string]any{
			"supplierCount":      st.supplierCount,
			"minPrice":           st.minPrice,
			"avgPrice":           st.avgPrice,
			"cheapestSupplierId": st.cheapestSupplierID,
		})
	})
	for _, e := range errs {
		summary.Errors = append(summary.Errors, fmt.Sprintf("product[%d]: %s", e.Index, e.Message))
	}
	for _, res := range results {
		if res.Err == nil {
			summary.ProductsUpdated++
		}
	}

	flagResults, flagErrs := RunBatch(ctx, flags, s.opts, func(ctx context.Context, w bestPriceWrite) (bool, error) {
		return w.best, s.gateway.UpdateQuote(ctx, w.quoteID, map[string]any{
			"isBestPrice": w.best,
		})
	})
	for _, e := range flagErrs {
		summary.Errors = append(summary.Errors, fmt.Sprintf("quote[%d]: %s", e.Index, e.Message))
	}
	for _, res := range flagResults {
		if res.Err != nil {
			continue
		}
		if res.Value {
			summary.BestPriceFlagged++
		} else {
			summary.BestPriceCleared++
		}
	}

	summary.FinishedAt = time.Now()
	log.Printf("[Aggregate] %s: done, %d products updated, %d best-price set, %d cleared, %d errors",
		summary.RunID, summary.ProductsUpdated, summary.BestPriceFlagged, summary.BestPriceCleared,
		len(summary.Errors))
	return summary, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
