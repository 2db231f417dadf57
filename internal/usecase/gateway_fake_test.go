package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/quotesync/backend/internal/domain"
)

// fakeGateway is an in-memory StoreGateway for service tests. Injected error
// hooks simulate item-level remote failures.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int

	suppliers map[string]*domain.Supplier
	products  map[string]*domain.Product
	quotes    map[string]*domain.Quote

	listSuppliersErr  error
	createSupplierErr func(name string) error
	updateQuoteErr    func(id string) error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		suppliers: make(map[string]*domain.Supplier),
		products:  make(map[string]*domain.Product),
		quotes:    make(map[string]*domain.Quote),
	}
}

func (f *fakeGateway) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeGateway) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listSuppliersErr != nil {
		return nil, f.listSuppliersErr
	}
	out := make([]domain.Supplier, 0, len(f.suppliers))
	for _, s := range f.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeGateway) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Quote, 0, len(f.quotes))
	for _, q := range f.quotes {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeGateway) CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createSupplierErr != nil {
		if err := f.createSupplierErr(s.Name); err != nil {
			return domain.Supplier{}, err
		}
	}
	s.ID = f.id("s")
	f.suppliers[s.ID] = &s
	return s, nil
}

func (f *fakeGateway) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id("p")
	f.products[p.ID] = &p
	return p, nil
}

func (f *fakeGateway) CreateQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = f.id("q")
	f.quotes[q.ID] = &q
	return q, nil
}

func (f *fakeGateway) UpdateProduct(ctx context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "avgPrice":
			p.AvgPrice = toFloat(value)
		case "minPrice":
			p.MinPrice = toFloat(value)
		case "supplierCount":
			p.SupplierCount = int(toFloat(value))
		case "cheapestSupplierId":
			p.CheapestSupplierID, _ = value.(string)
		}
	}
	return nil
}

func (f *fakeGateway) UpdateQuote(ctx context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateQuoteErr != nil {
		if err := f.updateQuoteErr(id); err != nil {
			return err
		}
	}
	q, ok := f.quotes[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "rawPrice":
			q.RawPrice = toFloat(value)
		case "adjustedPrice":
			q.AdjustedPrice = toFloat(value)
		case "sortPrice":
			q.SortPrice = toFloat(value)
		case "isBestPrice":
			q.IsBestPrice, _ = value.(bool)
		}
	}
	return nil
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// findQuote returns the quote for a (product, supplier) pair, or nil.
func (f *fakeGateway) findQuote(productID, supplierID string) *domain.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.quotes {
		if q.ProductID == productID && q.SupplierID == supplierID {
			copied := *q
			return &copied
		}
	}
	return nil
}

// findSupplier returns the supplier with the given name, or nil.
func (f *fakeGateway) findSupplier(name string) *domain.Supplier {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.suppliers {
		if s.Name == name {
			copied := *s
			return &copied
		}
	}
	return nil
}

// findProducts returns every product matching the predicate.
func (f *fakeGateway) findProducts(match func(domain.Product) bool) []domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		if match(*p) {
			out = append(out, *p)
		}
	}
	return out
}
