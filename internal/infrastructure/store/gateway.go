package store

import (
	"context"

	"github.com/quotesync/backend/internal/domain"
)

// Collection names in the remote store.
const (
	CollectionSuppliers = "suppliers"
	CollectionProducts  = "products"
	CollectionQuotes    = "quotes"
)

// Gateway adapts the generic record client to the typed domain interface.
type Gateway struct {
	client *Client
}

// NewGateway creates a typed gateway over the store client.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	records, err := g.client.FetchAll(ctx, CollectionSuppliers, nil)
	if err != nil {
		return nil, err
	}
	suppliers := make([]domain.Supplier, 0, len(records))
	for _, rec := range records {
		suppliers = append(suppliers, supplierFromRecord(rec))
	}
	return suppliers, nil
}

func (g *Gateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := g.client.FetchAll(ctx, CollectionProducts, nil)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, productFromRecord(rec))
	}
	return products, nil
}

func (g *Gateway) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	records, err := g.client.FetchAll(ctx, CollectionQuotes, nil)
	if err != nil {
		return nil, err
	}
	quotes := make([]domain.Quote, 0, len(records))
	for _, rec := range records {
		quotes = append(quotes, quoteFromRecord(rec))
	}
	return quotes, nil
}

func (g *Gateway) CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	rec, err := g.client.Create(ctx, CollectionSuppliers, map[string]any{
		"name": s.Name,
	})
	if err != nil {
		return domain.Supplier{}, err
	}
	return supplierFromRecord(rec), nil
}

func (g *Gateway) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	rec, err := g.client.Create(ctx, CollectionProducts, map[string]any{
		"code":               p.Code,
		"displayName":        p.DisplayName,
		"tag":                string(p.Tag),
		"avgPrice":           p.AvgPrice,
		"minPrice":           p.MinPrice,
		"supplierCount":      p.SupplierCount,
		"cheapestSupplierId": p.CheapestSupplierID,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return productFromRecord(rec), nil
}

func (g *Gateway) CreateQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	rec, err := g.client.Create(ctx, CollectionQuotes, map[string]any{
		"productId":     q.ProductID,
		"supplierId":    q.SupplierID,
		"rawPrice":      q.RawPrice,
		"adjustedPrice": q.AdjustedPrice,
		"sortPrice":     q.SortPrice,
		"isBestPrice":   q.IsBestPrice,
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return quoteFromRecord(rec), nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, fields map[string]any) error {
	_, err := g.client.Update(ctx, CollectionProducts, id, fields)
	return err
}

func (g *Gateway) UpdateQuote(ctx context.Context, id string, fields map[string]any) error {
	_, err := g.client.Update(ctx, CollectionQuotes, id, fields)
	return err
}

func supplierFromRecord(rec Record) domain.Supplier {
	return domain.Supplier{
		ID:   str(rec, "id"),
		Name: str(rec, "name"),
	}
}

func productFromRecord(rec Record) domain.Product {
	return domain.Product{
		ID:                 str(rec, "id"),
		Code:               str(rec, "code"),
		DisplayName:        str(rec, "displayName"),
		Tag:                domain.KeyKind(str(rec, "tag")),
		AvgPrice:           num(rec, "avgPrice"),
		MinPrice:           num(rec, "minPrice"),
		SupplierCount:      int(num(rec, "supplierCount")),
		CheapestSupplierID: str(rec, "cheapestSupplierId"),
	}
}

func quoteFromRecord(rec Record) domain.Quote {
	return domain.Quote{
		ID:            str(rec, "id"),
		ProductID:     str(rec, "productId"),
		SupplierID:    str(rec, "supplierId"),
		RawPrice:      num(rec, "rawPrice"),
		AdjustedPrice: num(rec, "adjustedPrice"),
		SortPrice:     num(rec, "sortPrice"),
		IsBestPrice:   boolean(rec, "isBestPrice"),
	}
}

func str(rec Record, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func num(rec Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func boolean(rec Record, key string) bool {
	if v, ok := rec[key].(bool); ok {
		return v
	}
	return false
}
