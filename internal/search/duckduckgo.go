package search

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/atoyeh09/LinkBazar/internal/fetcher"
)

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// regionCodes maps the API's TLD-style country codes to DuckDuckGo region
// identifiers. Unknown codes fall back to the worldwide default.
var regionCodes = map[string]string{
	"com":    "us-en",
	"co.uk":  "uk-en",
	"com.pk": "pk-en",
	"com.au": "au-en",
	"ca":     "ca-en",
	"de":     "de-de",
	"fr":     "fr-fr",
	"in":     "in-en",
}

// DuckDuckGo searches the HTML (no-JS) endpoint and parses result links
// with goquery. A client-side rate limiter keeps repeated attempt batches
// from hammering the engine.
type DuckDuckGo struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewDuckDuckGo(requestsPerSecond float64) *DuckDuckGo {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	client := resty.New().
		SetTimeout(20*time.Second).
		SetHeader("Accept-Language", "en-US,en;q=0.5")
	return &DuckDuckGo{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 2),
		logger:  slog.Default().With("component", "search"),
	}
}

// Client exposes the underlying resty client for tests.
func (d *DuckDuckGo) Client() *resty.Client {
	return d.client
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}

	params := map[string]string{
		"q":  query,
		"kl": regionCode(opts.Region),
	}
	if opts.Offset > 0 {
		params["s"] = strconv.Itoa(opts.Offset)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", fetcher.RandomUserAgent()).
		SetQueryParams(params).
		Get(duckDuckGoEndpoint)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &SearchError{Query: query, Err: &fetcher.FetchError{URL: duckDuckGoEndpoint, StatusCode: resp.StatusCode()}}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if opts.Limit > 0 && len(results) >= opts.Limit {
			return false
		}
		link := s.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := unwrapRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})

	d.logger.Debug("search complete", "query", query, "results", len(results), "offset", opts.Offset)
	return results, nil
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect links to their
// real target.
func unwrapRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}

func regionCode(region string) string {
	if code, ok := regionCodes[strings.ToLower(region)]; ok {
		return code
	}
	return "wt-wt"
}
