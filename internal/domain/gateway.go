package domain

import (
	"context"
	"time"
)

// StoreGateway defines the typed interface to the three remote collections.
// Updates are partial: only the given fields are written.
type StoreGateway interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListQuotes(ctx context.Context) ([]Quote, error)

	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	CreateQuote(ctx context.Context, q Quote) (Quote, error)

	UpdateProduct(ctx context.Context, id string, fields map[string]any) error
	UpdateQuote(ctx context.Context, id string, fields map[string]any) error
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
