package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quotesync/backend/internal/domain"
	"github.com/quotesync/backend/internal/infrastructure/metrics"
	"github.com/quotesync/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	syncService      *usecase.SyncService
	aggregateService *usecase.AggregateService
	catalogService   *usecase.CatalogService
	metrics          *metrics.Metrics
	defaultMarkup    float64
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	syncService *usecase.SyncService,
	aggregateService *usecase.AggregateService,
	catalogService *usecase.CatalogService,
	m *metrics.Metrics,
	defaultMarkup float64,
) *Handler {
	return &Handler{
		syncService:      syncService,
		aggregateService: aggregateService,
		catalogService:   catalogService,
		metrics:          m,
		defaultMarkup:    defaultMarkup,
	}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quotesync-backend",
		"version": "1.0.0",
	})
}

// Sync ingests a price-list extract (multipart "file" field or raw text
// body) plus a markup parameter and runs a full reconciliation.
func (h *Handler) Sync(c *gin.Context) {
	markup, ok := h.markupParam(c)
	if !ok {
		return
	}

	var reader = c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			h.rejectError(c, err)
			return
		}
		defer f.Close()
		reader = f
	}

	summary, err := h.syncService.Run(c.Request.Context(), reader, markup)
	if err != nil {
		h.metrics.SyncRuns.WithLabelValues("sync", "error").Inc()
		h.rejectError(c, err)
		return
	}

	h.metrics.SyncRuns.WithLabelValues("sync", "ok").Inc()
	h.metrics.ItemErrors.Add(float64(len(summary.Errors)))
	c.JSON(http.StatusOK, summary)
}

// Aggregate triggers the aggregation and best-price pass alone, without an
// extract.
func (h *Handler) Aggregate(c *gin.Context) {
	summary, err := h.aggregateService.Run(c.Request.Context())
	if err != nil {
		h.metrics.SyncRuns.WithLabelValues("aggregate", "error").Inc()
		h.rejectError(c, err)
		return
	}

	h.metrics.SyncRuns.WithLabelValues("aggregate", "ok").Inc()
	h.metrics.ItemErrors.Add(float64(len(summary.Errors)))
	c.JSON(http.StatusOK, summary)
}

// Stats returns per-collection record counts.
func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.catalogService.Counts(c.Request.Context())
	if err != nil {
		h.rejectError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// LookupProduct finds a single product by ?code= or ?name=.
func (h *Handler) LookupProduct(c *gin.Context) {
	code := c.Query("code")
	name := c.Query("name")

	var key domain.ProductKey
	switch {
	case code != "" && name == "":
		key = domain.ProductKey{Kind: domain.KeyCode, Value: code}
	case name != "" && code == "":
		key = domain.ProductKey{Kind: domain.KeyName, Value: name}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of code or name is required"})
		return
	}

	product, err := h.catalogService.FindProduct(c.Request.Context(), key)
	if err != nil {
		h.rejectError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ProductsWithoutCode returns the products lacking a usable code.
func (h *Handler) ProductsWithoutCode(c *gin.Context) {
	products, err := h.catalogService.ProductsWithoutCode(c.Request.Context())
	if err != nil {
		h.rejectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// markupParam reads the markup from query or form, falling back to the
// configured default. A malformed value rejects the request.
func (h *Handler) markupParam(c *gin.Context) (float64, bool) {
	raw := c.Query("markup")
	if raw == "" {
		raw = c.PostForm("markup")
	}
	if raw == "" {
		return h.defaultMarkup, true
	}
	markup, err := strconv.ParseFloat(raw, 64)
	if err != nil || markup < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "markup must be a non-negative number"})
		return 0, false
	}
	return markup, true
}

// rejectError maps domain errors to HTTP statuses. Failures carry a message
// and timestamp; partial writes are not rolled back.
func (h *Handler) rejectError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreFailure), errors.Is(err, domain.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"error":     err.Error(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
