package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quotesync/backend/internal/domain"
	"github.com/quotesync/backend/internal/extract"
)

// SyncConfig holds configuration for the reconciliation engine.
type SyncConfig struct {
	Separator  rune
	BatchSize  int
	Window     int
	ChunkDelay time.Duration
}

// SyncService reconciles a parsed price-list extract against the remote
// store: it diffs suppliers, products and quotes, applies the difference with
// bounded concurrency, decays quotes no longer offered, and finishes with a
// full aggregation pass.
type SyncService struct {
	gateway   domain.StoreGateway
	aggregate *AggregateService
	cfg       SyncConfig
}

// NewSyncService creates a sync service with dependencies.
func NewSyncService(gateway domain.StoreGateway, aggregate *AggregateService, cfg SyncConfig) *SyncService {
	if cfg.Separator == 0 {
		cfg.Separator = ','
	}
	return &SyncService{
		gateway:   gateway,
		aggregate: aggregate,
		cfg:       cfg,
	}
}

// quotePair is the natural key of the quote relation.
type quotePair struct {
	productID  string
	supplierID string
}

// syncRun owns every lookup index of one reconciliation run. Indexes are
// mutated only between batches, never from two in-flight operations.
type syncRun struct {
	gateway domain.StoreGateway
	opts    BatchOptions
	markup  float64
	summary *domain.SyncSummary

	suppliersByName  map[string]domain.Supplier
	productsByKey    map[domain.ProductKey]domain.Product
	productsByID     map[string]domain.Product
	quotesByPair     map[quotePair]domain.Quote
	quotesBySupplier map[string][]domain.Quote

	// quoted holds, per supplier name, every identifier (usable code and
	// trimmed name) the supplier offered in this run. Drives decay.
	quoted map[string]map[string]bool

	supplierQueue []domain.Supplier
	productQueue  []domain.Product
	quoteQueue    []extract.LineItem
}

// Run executes a full sync: parse, load, plan, apply, decay, aggregate.
// A load failure is fatal for the run; item-level failures are collected in
// the summary and never abort the remaining work.
func (s *SyncService) Run(ctx context.Context, r io.Reader, markup float64) (*domain.SyncSummary, error) {
	stores, err := extract.ParseExtract(r, s.cfg.Separator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	run := &syncRun{
		gateway: s.gateway,
		opts: BatchOptions{
			BatchSize:  s.cfg.BatchSize,
			Window:     s.cfg.Window,
			ChunkDelay: s.cfg.ChunkDelay,
		},
		markup: markup,
		summary: &domain.SyncSummary{
			RunID:     "run_" + uuid.New().String(),
			StartedAt: time.Now(),
			Errors:    []string{},
		},
	}
	for _, sl := range stores {
		run.summary.Stores = append(run.summary.Stores, domain.StoreCount{
			Name:        sl.Supplier,
			Total:       sl.Total,
			WithCode:    sl.WithCode,
			WithoutCode: sl.WithoutCode,
		})
	}

	log.Printf("[Sync] %s: starting, %d stores, markup %.2f", run.summary.RunID, len(stores), markup)

	if err := run.load(ctx); err != nil {
		return nil, err
	}
	run.plan(stores)
	run.applySuppliers(ctx)
	run.applyProducts(ctx)
	run.applyQuotes(ctx)
	run.decay(ctx)

	if agg, err := s.aggregate.Run(ctx); err != nil {
		run.summary.Errors = append(run.summary.Errors, fmt.Sprintf("aggregate: %v", err))
	} else {
		for _, e := range agg.Errors {
			run.summary.Errors = append(run.summary.Errors, fmt.Sprintf("aggregate: %s", e))
		}
	}

	run.summary.FinishedAt = time.Now()
	log.Printf("[Sync] %s: done, %d suppliers created, %d products created, %d quotes created, %d updated, %d zeroed, %d errors",
		run.summary.RunID, run.summary.SuppliersCreated, run.summary.ProductsCreated,
		run.summary.QuotesCreated, run.summary.QuotesUpdated, run.summary.QuotesZeroed,
		len(run.summary.Errors))
	return run.summary, nil
}

// load fetches all current remote state and builds the lookup indexes.
func (r *syncRun) load(ctx context.Context) error {
	suppliers, err := r.gateway.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("loading suppliers: %w", err)
	}
	products, err := r.gateway.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("loading products: %w", err)
	}
	quotes, err := r.gateway.ListQuotes(ctx)
	if err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	r.suppliersByName = make(map[string]domain.Supplier, len(suppliers))
	for _, s := range suppliers {
		r.suppliersByName[s.Name] = s
	}

	r.productsByKey = make(map[domain.ProductKey]domain.Product, len(products))
	r.productsByID = make(map[string]domain.Product, len(products))
	for _, p := range products {
		r.indexProduct(p)
	}

	r.quotesByPair = make(map[quotePair]domain.Quote, len(quotes))
	r.quotesBySupplier = make(map[string][]domain.Quote)
	for _, q := range quotes {
		r.quotesByPair[quotePair{q.ProductID, q.SupplierID}] = q
		r.quotesBySupplier[q.SupplierID] = append(r.quotesBySupplier[q.SupplierID], q)
	}

	log.Printf("[Sync] %s: loaded %d suppliers, %d products, %d quotes",
		r.summary.RunID, len(suppliers), len(products), len(quotes))
	return nil
}

// indexProduct registers a product under every identifier it answers to: its
// usable code and its display name. A code-tagged product is findable by name
// too, so a later name-only row does not recreate it.
func (r *syncRun) indexProduct(p domain.Product) {
	if domain.UsableCode(p.Code) {
		r.productsByKey[domain.ProductKey{Kind: domain.KeyCode, Value: strings.TrimSpace(p.Code)}] = p
	}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		key := domain.ProductKey{Kind: domain.KeyName, Value: name}
		if _, taken := r.productsByKey[key]; !taken || p.Tag == domain.KeyName {
			r.productsByKey[key] = p
		}
	}
	r.productsByID[p.ID] = p
}

// plan walks every line item and queues the creates and quote operations the
// remote state is missing.
func (r *syncRun) plan(stores []extract.StoreList) {
	queuedSuppliers := make(map[string]bool)
	queuedProducts := make(map[domain.ProductKey]bool)
	r.quoted = make(map[string]map[string]bool)

	for _, sl := range stores {
		if r.quoted[sl.Supplier] == nil {
			r.quoted[sl.Supplier] = make(map[string]bool)
		}
		if _, exists := r.suppliersByName[sl.Supplier]; !exists && !queuedSuppliers[sl.Supplier] {
			queuedSuppliers[sl.Supplier] = true
			r.supplierQueue = append(r.supplierQueue, domain.Supplier{Name: sl.Supplier})
		}

		for _, item := range sl.Items {
			if _, exists := r.productsByKey[item.Key]; !exists && !queuedProducts[item.Key] {
				queuedProducts[item.Key] = true
				r.productQueue = append(r.productQueue, newProduct(item))
			}
			r.quoteQueue = append(r.quoteQueue, item)

			if domain.UsableCode(item.RawCode) {
				r.quoted[sl.Supplier][strings.TrimSpace(item.RawCode)] = true
			}
			if name := strings.TrimSpace(item.RawName); name != "" {
				r.quoted[sl.Supplier][name] = true
			}
		}
	}

	log.Printf("[Sync] %s: planned %d supplier creates, %d product creates, %d quote ops",
		r.summary.RunID, len(r.supplierQueue), len(r.productQueue), len(r.quoteQueue))
}

// newProduct builds the create payload for a line item's identity, with
// empty aggregate fields.
func newProduct(item extract.LineItem) domain.Product {
	p := domain.Product{
		DisplayName: strings.TrimSpace(item.RawName),
		Tag:         item.Key.Kind,
	}
	if item.Key.Kind == domain.KeyCode {
		p.Code = item.Key.Value
	} else {
		p.DisplayName = item.Key.Value
	}
	return p
}

// applySuppliers creates the queued suppliers and indexes them immediately so
// later phases see them. Each create re-verifies against the index first.
func (r *syncRun) applySuppliers(ctx context.Context) {
	results, errs := RunBatch(ctx, r.supplierQueue, r.opts, func(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
		if existing, ok := r.suppliersByName[s.Name]; ok {
			return existing, nil
		}
		return r.gateway.CreateSupplier(ctx, s)
	})
	r.collectErrors("supplier", errs)

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if _, known := r.suppliersByName[res.Value.Name]; !known {
			r.summary.SuppliersCreated++
		}
		r.suppliersByName[res.Value.Name] = res.Value
	}
}

// applyProducts mirrors applySuppliers, keyed on (kind, identifier).
func (r *syncRun) applyProducts(ctx context.Context) {
	results, errs := RunBatch(ctx, r.productQueue, r.opts, func(ctx context.Context, p domain.Product) (domain.Product, error) {
		if existing, ok := r.productsByKey[p.Key()]; ok {
			return existing, nil
		}
		return r.gateway.CreateProduct(ctx, p)
	})
	r.collectErrors("product", errs)

	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if _, known := r.productsByID[res.Value.ID]; !known {
			r.summary.ProductsCreated++
		}
		r.indexProduct(res.Value)
	}
}

// quoteOutcome tags what applyQuotes did for one line item.
type quoteOutcome int

const (
	quoteUnchanged quoteOutcome = iota
	quoteCreated
	quoteUpdated
)

// applyQuotes resolves each queued line item against the now-complete indexes
// and creates or updates its quote. A lookup miss is an item error, not a run
// abort. No write is issued when the raw price is unchanged.
func (r *syncRun) applyQuotes(ctx context.Context) {
	results, errs := RunBatch(ctx, r.quoteQueue, r.opts, func(ctx context.Context, item extract.LineItem) (quoteOutcome, error) {
		supplier, ok := r.suppliersByName[item.SupplierName]
		if !ok {
			return quoteUnchanged, fmt.Errorf("supplier %q not found for %q", item.SupplierName, item.Key.Value)
		}
		product, ok := r.productsByKey[item.Key]
		if !ok {
			return quoteUnchanged, fmt.Errorf("product %s %q not found", item.Key.Kind, item.Key.Value)
		}

		existing, ok := r.quotesByPair[quotePair{product.ID, supplier.ID}]
		if !ok {
			_, err := r.gateway.CreateQuote(ctx, domain.Quote{
				ProductID:     product.ID,
				SupplierID:    supplier.ID,
				RawPrice:      item.Price,
				AdjustedPrice: domain.AdjustPrice(item.Price, r.markup),
				SortPrice:     domain.SortPriceFor(item.Price),
				IsBestPrice:   false,
			})
			if err != nil {
				return quoteUnchanged, err
			}
			return quoteCreated, nil
		}

		if existing.RawPrice == item.Price {
			return quoteUnchanged, nil
		}
		err := r.gateway.UpdateQuote(ctx, existing.ID, map[string]any{
			"rawPrice":      item.Price,
			"adjustedPrice": domain.AdjustPrice(item.Price, r.markup),
			"sortPrice":     domain.SortPriceFor(item.Price),
		})
		if err != nil {
			return quoteUnchanged, err
		}
		return quoteUpdated, nil
	})
	r.collectErrors("quote", errs)

	for _, res := range results {
		switch res.Value {
		case quoteCreated:
			r.summary.QuotesCreated++
		case quoteUpdated:
			r.summary.QuotesUpdated++
		}
	}
}

// decay zeroes every quote whose supplier stopped offering its product in
// this run: if a product no longer appears in the supplier's current list,
// its price is absent, not stale.
func (r *syncRun) decay(ctx context.Context) {
	var stale []domain.Quote
	for name, supplier := range r.suppliersByName {
		current := r.quoted[name]
		for _, q := range r.quotesBySupplier[supplier.ID] {
			if q.RawPrice <= 0 {
				continue
			}
			product, ok := r.productsByID[q.ProductID]
			if !ok {
				continue
			}
			if current[strings.TrimSpace(product.Code)] || current[strings.TrimSpace(product.DisplayName)] {
				continue
			}
			stale = append(stale, q)
		}
	}

	results, errs := RunBatch(ctx, stale, r.opts, func(ctx context.Context, q domain.Quote) (struct{}, error) {
		return struct{}{}, r.gateway.UpdateQuote(ctx, q.ID, map[string]any{
			"rawPrice":      0.0,
			"adjustedPrice": 0.0,
			"sortPrice":     domain.InvalidSortPrice,
		})
	})
	r.collectErrors("decay", errs)

	for _, res := range results {
		if res.Err == nil {
			r.summary.QuotesZeroed++
		}
	}
}

func (r *syncRun) collectErrors(phase string, errs []BatchError) {
	for _, e := range errs {
		r.summary.Errors = append(r.summary.Errors, fmt.Sprintf("%s[%d]: %s", phase, e.Index, e.Message))
	}
}
