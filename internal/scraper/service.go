package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atoyeh09/LinkBazar/internal/extract"
	"github.com/atoyeh09/LinkBazar/internal/fetcher"
	"github.com/atoyeh09/LinkBazar/internal/models"
	"github.com/atoyeh09/LinkBazar/internal/search"
)

// unknownTitle is the placeholder used when a page has no <title>.
const unknownTitle = "Unknown Title"

// Store persists complete product records. Persistence failures are logged
// and never fail a scrape.
type Store interface {
	SaveRecord(ctx context.Context, record *models.ProductRecord) error
}

// Config carries the tunables of the scrape service.
type Config struct {
	MinPriceThreshold float64
	MaxImages         int
	MaxSearchAttempts int
	DefaultRegion     string
	CacheSize         int
	CacheTTL          time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinPriceThreshold: 50,
		MaxImages:         5,
		MaxSearchAttempts: 15,
		DefaultRegion:     "com",
		CacheSize:         256,
		CacheTTL:          5 * time.Minute,
	}
}

type cacheEntry struct {
	record   *models.ProductRecord
	cachedAt time.Time
}

// Service orchestrates the extraction cascade for single URLs and the
// search-and-accumulate loop for queries.
type Service struct {
	fetcher  fetcher.Fetcher
	browser  fetcher.Fetcher
	provider search.Provider
	store    Store
	cache    *lru.Cache[string, cacheEntry]
	metrics  *Metrics
	logger   *slog.Logger
	cfg      Config
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithBrowser installs a browser-rendering fetcher used as a fallback when
// the static fetch is rejected with a bot-blocking status.
func WithBrowser(b fetcher.Fetcher) Option {
	return func(s *Service) { s.browser = b }
}

// WithStore installs a persistence sink for complete records.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithMetrics installs prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(f fetcher.Fetcher, provider search.Provider, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 5
	}
	if cfg.MaxSearchAttempts <= 0 {
		cfg.MaxSearchAttempts = 15
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}

	s := &Service{
		fetcher:  f,
		provider: provider,
		logger:   logger.With("component", "scraper"),
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := lru.New[string, cacheEntry](cfg.CacheSize)
	if err == nil {
		s.cache = cache
	}

	return s
}

// ScrapeProduct fetches a page and assembles a product record by running
// the extraction methods in priority order, each step only filling fields
// the previous steps left absent. Any failure or panic is converted into a
// failed record; this method never returns nil and never propagates an
// error.
func (s *Service) ScrapeProduct(ctx context.Context, pageURL string) (record *models.ProductRecord) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scrape panicked", "url", pageURL, "panic", r)
			s.metrics.IncScrape("panic")
			record = models.FailedRecord(pageURL, fmt.Sprintf("%v", r))
		}
		s.metrics.ObserveScrapeDuration(time.Since(start))
	}()

	if cached, ok := s.cachedRecord(pageURL); ok {
		s.metrics.IncScrape("cache_hit")
		return cached
	}

	html, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		s.logger.Warn("fetch failed", "url", pageURL, "error", err)
		s.metrics.IncScrape("fetch_error")
		return models.FailedRecord(pageURL, err.Error())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.metrics.IncScrape("parse_error")
		return models.FailedRecord(pageURL, fmt.Sprintf("failed to parse page: %v", err))
	}

	record = s.assemble(doc, pageURL)
	s.cacheRecord(record)

	if record.IsComplete(s.cfg.MinPriceThreshold) {
		s.persist(ctx, record)
	}

	s.metrics.IncScrape("success")
	return record
}

// assemble runs the extraction cascade over a parsed document.
func (s *Service) assemble(doc *goquery.Document, pageURL string) *models.ProductRecord {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = unknownTitle
	}

	var price *float64
	var currency, description string
	var images []string

	// Structured data takes priority and overwrites the placeholder title.
	structured := extract.Structured(doc, pageURL)
	if structured.Title != "" {
		title = structured.Title
	}
	if structured.Price != nil {
		price = structured.Price
	}
	if structured.Currency != "" {
		currency = structured.Currency
	}
	if len(structured.Images) > 0 {
		images = append(images, structured.Images...)
	}
	if structured.Description != "" {
		description = structured.Description
	}

	if price == nil || len(images) == 0 || description == "" {
		meta := extract.MetaTags(doc)
		if price == nil && meta.Price != nil {
			price = meta.Price
			if currency == "" {
				currency = meta.Currency
			}
		}
		if len(images) == 0 && len(meta.Images) > 0 {
			images = append(images, meta.Images[0])
		}
		if description == "" && meta.Description != "" {
			description = meta.Description
		}
		if title == "" && meta.Title != "" {
			title = meta.Title
		}
	}

	pageText := doc.Text()

	if price == nil {
		mined := extract.PriceFromText(pageText)
		if mined.Price != nil {
			price = mined.Price
			if currency == "" {
				currency = mined.Currency
			}
		}
	}

	if len(images) == 0 {
		images = extract.Images(doc, pageURL)
	}

	if description == "" {
		description = extract.Description(doc)
	}

	// A spuriously low price is usually a shipping fee or an accessory;
	// prefer the first plausible price elsewhere in the page text.
	if price != nil && *price < s.cfg.MinPriceThreshold {
		if better := extract.RescanAboveThreshold(pageText, s.cfg.MinPriceThreshold); better != nil {
			price = better
		}
	}

	images = dedupeOrdered(images)
	if len(images) > s.cfg.MaxImages {
		images = images[:s.cfg.MaxImages]
	}
	if images == nil {
		images = []string{}
	}

	return &models.ProductRecord{
		URL:         pageURL,
		Title:       title,
		Price:       price,
		Currency:    currency,
		Description: description,
		Images:      images,
		Success:     true,
	}
}

// fetchPage fetches with the static client, falling back to the browser
// fetcher when the page rejects plain HTTP clients.
func (s *Service) fetchPage(ctx context.Context, pageURL string) (string, error) {
	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err == nil {
		return html, nil
	}

	if s.browser != nil && isBotBlocked(err) {
		s.logger.Info("static fetch blocked, retrying with browser", "url", pageURL)
		return s.browser.Fetch(ctx, pageURL)
	}

	return "", err
}

func isBotBlocked(err error) bool {
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.StatusCode {
	case 403, 429, 503:
		return true
	}
	return false
}

func (s *Service) cachedRecord(pageURL string) (*models.ProductRecord, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}
	entry, ok := s.cache.Get(pageURL)
	if !ok {
		return nil, false
	}
	if time.Since(entry.cachedAt) > s.cfg.CacheTTL {
		s.cache.Remove(pageURL)
		return nil, false
	}
	return entry.record.Clone(), true
}

func (s *Service) cacheRecord(record *models.ProductRecord) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 || record == nil || !record.Success {
		return
	}
	s.cache.Add(record.URL, cacheEntry{record: record.Clone(), cachedAt: time.Now()})
}

func (s *Service) persist(ctx context.Context, record *models.ProductRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRecord(ctx, record); err != nil {
		s.logger.Error("failed to persist record", "url", record.URL, "error", err)
	}
}

func dedupeOrdered(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
