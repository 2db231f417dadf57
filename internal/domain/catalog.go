package domain

// InvalidSortPrice is the sort sentinel for quotes without a usable price,
// so they always order after every real offer.
const InvalidSortPrice float64 = 999999

// Supplier represents one price source. Name is the unique business key;
// suppliers are created lazily the first time a name shows up in an extract.
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry addressed by exactly one identifier kind:
// its code when usable, otherwise its display name (see ProductKey).
// The aggregate fields are recomputed on every aggregation pass.
type Product struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code,omitempty"`
	DisplayName        string  `json:"displayName"`
	Tag                KeyKind `json:"tag"`
	AvgPrice           float64 `json:"avgPrice"`
	MinPrice           float64 `json:"minPrice"`
	SupplierCount      int     `json:"supplierCount"`
	CheapestSupplierID string  `json:"cheapestSupplierId,omitempty"`
}

// Key returns the identity this product is addressed by.
func (p *Product) Key() ProductKey {
	if p.Tag == KeyName {
		return ProductKey{Kind: KeyName, Value: p.DisplayName}
	}
	return ProductKey{Kind: KeyCode, Value: p.Code}
}

// Quote is one supplier's offer for one product. At most one quote exists
// per (ProductID, SupplierID) pair.
type Quote struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	SupplierID    string  `json:"supplierId"`
	RawPrice      float64 `json:"rawPrice"`
	AdjustedPrice float64 `json:"adjustedPrice"`
	SortPrice     float64 `json:"sortPrice"`
	IsBestPrice   bool    `json:"isBestPrice"`
}

// AdjustPrice applies the flat markup used for all downstream comparisons.
// Zero and negative raw prices stay at zero.
func AdjustPrice(raw, markup float64) float64 {
	if raw > 0 {
		return raw + markup
	}
	return 0
}

// SortPriceFor returns the raw price when usable, else the invalid sentinel.
func SortPriceFor(raw float64) float64 {
	if raw > 0 {
		return raw
	}
	return InvalidSortPrice
}
