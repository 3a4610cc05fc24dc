package fetcher

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves raw page markup for a URL. Implementations own their
// transport; callers only see the markup or a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError reports a failed page fetch, either a non-2xx response or a
// transport failure.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch page: %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch page %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
}

// RandomUserAgent returns one entry from the fixed user agent pool.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// StaticFetcher fetches pages with a plain HTTP client, browser-like
// headers and a randomized user agent per request.
type StaticFetcher struct {
	client *resty.Client
}

func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeaders(map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.5",
			"Referer":                   "https://www.google.com/",
			"DNT":                       "1",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
		})
	return &StaticFetcher{client: client}
}

// Client exposes the underlying resty client, used by tests to install a
// mock transport.
func (f *StaticFetcher) Client() *resty.Client {
	return f.client
}

func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", RandomUserAgent()).
		Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.String(), nil
}
