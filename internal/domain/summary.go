package domain

import "time"

// StoreCount summarizes one store column group of the extract.
type StoreCount struct {
	Name        string `json:"name"`
	Total       int    `json:"total"`
	WithCode    int    `json:"withCode"`
	WithoutCode int    `json:"withoutCode"`
}

// SyncSummary is the structured result of one full reconciliation run.
// Errors holds item-level failures; the run itself completed.
type SyncSummary struct {
	RunID            string       `json:"runId"`
	StartedAt        time.Time    `json:"startedAt"`
	FinishedAt       time.Time    `json:"finishedAt"`
	Stores           []StoreCount `json:"stores"`
	SuppliersCreated int          `json:"suppliersCreated"`
	ProductsCreated  int          `json:"productsCreated"`
	QuotesCreated    int          `json:"quotesCreated"`
	QuotesUpdated    int          `json:"quotesUpdated"`
	QuotesZeroed     int          `json:"quotesZeroed"`
	Errors           []string     `json:"errors"`
}

// AggregateSummary is the result of the standalone aggregation pass.
type AggregateSummary struct {
	RunID            string    `json:"runId"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
	ProductsUpdated  int       `json:"productsUpdated"`
	BestPriceFlagged int       `json:"bestPriceFlagged"`
	BestPriceCleared int       `json:"bestPriceCleared"`
	Errors           []string  `json:"errors"`
}
