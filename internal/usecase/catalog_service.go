package usecase

import (
	"context"
	"time"

	"github.com/quotesync/backend/internal/domain"
)

const countsCacheKey = "catalog:counts"

// CollectionCounts is the read-only per-collection record count.
type CollectionCounts struct {
	Suppliers int `json:"suppliers"`
	Products  int `json:"products"`
	Quotes    int `json:"quotes"`
}

// CatalogService backs the read-only diagnostic endpoints. Collection counts
// are cached briefly so diagnostics do not hammer the remote store.
type CatalogService struct {
	gateway  domain.StoreGateway
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewCatalogService creates a catalog service.
func NewCatalogService(gateway domain.StoreGateway, cache domain.CacheRepository, cacheTTL time.Duration) *CatalogService {
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		gateway:  gateway,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Counts returns the number of records in each collection.
func (s *CatalogService) Counts(ctx context.Context) (*CollectionCounts, error) {
	if cached, err := s.cache.Get(ctx, countsCacheKey); err == nil {
		if counts := countsFromCache(cached); counts != nil {
			return counts, nil
		}
	}

	suppliers, err := s.gateway.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := s.gateway.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}

	counts := &CollectionCounts{
		Suppliers: len(suppliers),
		Products:  len(products),
		Quotes:    len(quotes),
	}
	// Best effort; a failed cache write never fails the request.
	_ = s.cache.Set(ctx, countsCacheKey, counts, s.cacheTTL)
	return counts, nil
}

// FindProduct looks up a single product by either identifier kind.
func (s *CatalogService) FindProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error) {
	if key.Value == "" {
		return nil, domain.ErrInvalidRequest
	}
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		p := &products[i]
		switch key.Kind {
		case domain.KeyCode:
			if p.Code == key.Value {
				return p, nil
			}
		case domain.KeyName:
			if p.DisplayName == key.Value {
				return p, nil
			}
		}
	}
	return nil, domain.ErrRecordNotFound
}

// ProductsWithoutCode returns every product lacking a usable code.
func (s *CatalogService) ProductsWithoutCode(ctx context.Context) ([]domain.Product, error) {
	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	missing := []domain.Product{}
	for _, p := range products {
		if !domain.UsableCode(p.Code) {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// countsFromCache converts a cached value (a JSON round-tripped map) back to
// CollectionCounts.
func countsFromCache(value interface{}) *CollectionCounts {
	data, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	counts := &CollectionCounts{}
	if v, ok := data["suppliers"].(float64); ok {
		counts.Suppliers = int(v)
	}
	if v, ok := data["products"].(float64); ok {
		counts.Products = int(v)
	}
	if v, ok := data["quotes"].(float64); ok {
		counts.Quotes = int(v)
	}
	return counts
}
