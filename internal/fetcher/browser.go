package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in a headless browser before returning
// their markup. It is used as a fallback for pages that block plain HTTP
// clients or only populate product data from scripts.
type BrowserFetcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger
	timeout time.Duration
}

type BrowserOptions struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

func NewBrowserFetcher(opts *BrowserOptions) (*BrowserFetcher, error) {
	if opts == nil {
		opts = DefaultBrowserOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	userAgent := RandomUserAgent()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--user-agent=" + userAgent,
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:       &userAgent,
		AcceptDownloads: playwright.Bool(false),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
			"DNT":             "1",
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &BrowserFetcher{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		logger:  slog.Default().With("component", "browser_fetcher"),
		timeout: opts.Timeout,
	}, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to create page: %w", err)}
	}
	defer page.Close()

	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(b.timeout.Milliseconds())),
	})
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if resp != nil && (resp.Status() < 200 || resp.Status() >= 300) {
		return "", &FetchError{URL: url, StatusCode: resp.Status()}
	}

	html, err := page.Content()
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read page content: %w", err)}
	}

	b.logger.Debug("rendered page", "url", url, "bytes", len(html))
	return html, nil
}

func (b *BrowserFetcher) Close() error {
	if b.context != nil {
		b.context.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
	if b.pw != nil {
		return b.pw.Stop()
	}
	return nil
}
