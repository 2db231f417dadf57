package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quotesync/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_ListQuotes_MapsRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/quotes", r.URL.Path)
		writeEnvelope(w, []Record{
			{
				"id":            "q1",
				"productId":     "p1",
				"supplierId":    "s1",
				"rawPrice":      100.0,
				"adjustedPrice": 110.0,
				"sortPrice":     100.0,
				"isBestPrice":   true,
			},
		}, 0, "")
	}))
	defer server.Close()

	gateway := NewGateway(NewClient(server.URL, "key", "app", testOptions()))
	quotes, err := gateway.ListQuotes(context.Background())

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, domain.Quote{
		ID:            "q1",
		ProductID:     "p1",
		SupplierID:    "s1",
		RawPrice:      100,
		AdjustedPrice: 110,
		SortPrice:     100,
		IsBestPrice:   true,
	}, quotes[0])
}

func TestGateway_ListProducts_ToleratesMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, []Record{{"id": "p1", "displayName": "Widget", "tag": "name"}}, 0, "")
	}))
	defer server.Close()

	gateway := NewGateway(NewClient(server.URL, "key", "app", testOptions()))
	products, err := gateway.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].DisplayName)
	assert.Equal(t, domain.KeyName, products[0].Tag)
	assert.Zero(t, products[0].AvgPrice)
	assert.Empty(t, products[0].Code)
}

func TestGateway_CreateProduct_RoundTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "A1", payload["code"])
		assert.Equal(t, "code", payload["tag"])

		payload["id"] = "p9"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	gateway := NewGateway(NewClient(server.URL, "key", "app", testOptions()))
	created, err := gateway.CreateProduct(context.Background(), domain.Product{
		Code:        "A1",
		DisplayName: "Widget",
		Tag:         domain.KeyCode,
	})

	require.NoError(t, err)
	assert.Equal(t, "p9", created.ID)
	assert.Equal(t, "A1", created.Code)
	assert.Equal(t, domain.KeyCode, created.Tag)
}

func TestGateway_UpdateQuote_TargetsQuoteCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/quotes/q7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Record{"id": "q7"})
	}))
	defer server.Close()

	gateway := NewGateway(NewClient(server.URL, "key", "app", testOptions()))
	err := gateway.UpdateQuote(context.Background(), "q7", map[string]any{"isBestPrice": false})

	require.NoError(t, err)
}
