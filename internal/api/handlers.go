package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atoyeh09/LinkBazar/internal/models"
)

// ScraperService is the part of the scraper the API depends on.
type ScraperService interface {
	ScrapeProduct(ctx context.Context, pageURL string) *models.ProductRecord
	SearchAndScrape(ctx context.Context, query string, numResults int, region string) []*models.ProductRecord
}

// ProductCatalog reads previously persisted product snapshots. It is nil
// when the service runs without a database.
type ProductCatalog interface {
	Get(ctx context.Context, url string) (*models.ProductRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.ProductRecord, error)
}

type Handlers struct {
	scraper ScraperService
	catalog ProductCatalog
	logger  *slog.Logger
}

func NewHandlers(scraper ScraperService, catalog ProductCatalog, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: scraper,
		catalog: catalog,
		logger:  logger,
	}
}

// ScrapeRequest represents a single-page scrape request
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ProductResponse represents scraped product data
type ProductResponse struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Image       string   `json:"image,omitempty"`
	Images      []string `json:"images"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
}

// SearchAndScrapeRequest represents a search-driven scrape request
type SearchAndScrapeRequest struct {
	Query       string `json:"query"`
	NumResults  int    `json:"num_results"`
	CountryCode string `json:"country_code"`
}

// SearchAndScrapeResponse wraps the accumulated product records
type SearchAndScrapeResponse struct {
	Results []ProductResponse `json:"results"`
}

// Scrape handles single product page extraction requests
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validURL(req.URL) {
		h.respondError(w, http.StatusBadRequest, "a valid http(s) url is required")
		return
	}

	record := h.scraper.ScrapeProduct(r.Context(), req.URL)
	if !record.Success {
		h.logger.Error("scrape failed", "url", req.URL, "error", record.Error)
		h.respondError(w, http.StatusBadGateway, record.Error)
		return
	}

	if record.Price == nil || record.Title == "" {
		h.respondError(w, http.StatusNotFound, "product info not found")
		return
	}

	h.respondJSON(w, http.StatusOK, productResponse(record))
}

// SearchAndScrape handles search-driven product accumulation requests
func (h *Handlers) SearchAndScrape(w http.ResponseWriter, r *http.Request) {
	var req SearchAndScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	if req.NumResults <= 0 {
		req.NumResults = 5
	}
	if req.CountryCode == "" {
		req.CountryCode = "com"
	}

	records := h.scraper.SearchAndScrape(r.Context(), req.Query, req.NumResults, req.CountryCode)

	results := make([]ProductResponse, len(records))
	for i, rec := range records {
		results[i] = productResponse(rec)
	}

	h.respondJSON(w, http.StatusOK, SearchAndScrapeResponse{Results: results})
}

// ListProducts returns the most recently scraped snapshots
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.respondError(w, http.StatusServiceUnavailable, "snapshot store is not enabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	records, err := h.catalog.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list snapshots", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	results := make([]ProductResponse, len(records))
	for i, rec := range records {
		results[i] = productResponse(rec)
	}

	h.respondJSON(w, http.StatusOK, results)
}

// GetProduct returns the stored snapshot for one URL
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.respondError(w, http.StatusServiceUnavailable, "snapshot store is not enabled")
		return
	}

	target := r.URL.Query().Get("url")
	if !validURL(target) {
		h.respondError(w, http.StatusBadRequest, "a valid http(s) url is required")
		return
	}

	record, err := h.catalog.Get(r.Context(), target)
	if err != nil {
		h.logger.Error("failed to get snapshot", "url", target, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if record == nil {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	h.respondJSON(w, http.StatusOK, productResponse(record))
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func productResponse(record *models.ProductRecord) ProductResponse {
	resp := ProductResponse{
		Title:       record.Title,
		Price:       record.Price,
		Currency:    record.Currency,
		Images:      record.Images,
		Description: record.Description,
		URL:         record.URL,
	}
	if len(record.Images) > 0 {
		resp.Image = record.Images[0]
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
