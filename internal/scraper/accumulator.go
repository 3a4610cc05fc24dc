package scraper

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atoyeh09/LinkBazar/internal/models"
	"github.com/atoyeh09/LinkBazar/internal/search"
)

// queryVariants are appended to the user's query, cycled by attempt
// number, to bias search results toward pages that carry pricing.
var queryVariants = []string{
	" price",
	" buy online",
	" shop price",
	" specifications price",
}

// progressHeadroom is how many attempts the counter is clamped below the
// maximum after a productive batch, so the loop keeps searching while it
// is still finding complete records.
const progressHeadroom = 3

// searchState is the mutable per-call state of one search-and-scrape
// invocation. It is owned exclusively by that call.
type searchState struct {
	seen       map[string]struct{}
	results    []*models.ProductRecord
	attempts   int
	batchSize  int
	startIndex int
}

func newSearchState(numResults int) *searchState {
	batch := numResults * 4
	if batch > 40 {
		batch = 40
	}
	return &searchState{
		seen:      make(map[string]struct{}),
		batchSize: batch,
	}
}

// filterNew returns the URLs not yet seen this call and marks them seen.
func (st *searchState) filterNew(results []search.Result) []string {
	var urls []string
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if _, ok := st.seen[r.URL]; ok {
			continue
		}
		st.seen[r.URL] = struct{}{}
		urls = append(urls, r.URL)
	}
	return urls
}

// SearchAndScrape searches the web for query variants and scrapes result
// URLs concurrently until numResults complete product records have
// accumulated or the attempt budget runs out. A shortfall is returned
// silently; the loop never fails as a whole.
func (s *Service) SearchAndScrape(ctx context.Context, query string, numResults int, region string) []*models.ProductRecord {
	if numResults <= 0 {
		numResults = 5
	}
	if region == "" {
		region = s.cfg.DefaultRegion
	}

	st := newSearchState(numResults)
	maxAttempts := s.cfg.MaxSearchAttempts

	for len(st.results) < numResults && st.attempts < maxAttempts {
		if ctx.Err() != nil {
			break
		}

		variant := query + queryVariants[st.attempts%len(queryVariants)]
		s.logger.Info("search attempt",
			"attempt", st.attempts+1,
			"max", maxAttempts,
			"found", len(st.results),
			"wanted", numResults,
			"query", variant,
		)

		found, err := s.provider.Search(ctx, variant, search.Options{
			Region: region,
			Limit:  st.batchSize,
			Offset: st.startIndex,
		})
		if err != nil {
			s.logger.Warn("search attempt failed", "attempt", st.attempts+1, "error", err)
			s.metrics.IncSearchAttempt("error")
			st.attempts++
			continue
		}

		newURLs := st.filterNew(found)
		if len(newURLs) == 0 {
			s.logger.Info("search exhausted, no new urls", "found", len(st.results))
			break
		}

		records := s.scrapeBatch(ctx, newURLs)

		progressed := 0
		for _, record := range records {
			if !record.IsComplete(s.cfg.MinPriceThreshold) {
				continue
			}
			st.results = append(st.results, record)
			progressed++
			if len(st.results) >= numResults {
				break
			}
		}

		st.startIndex += st.batchSize
		st.attempts++
		s.metrics.IncSearchAttempt("ok")

		// Keep searching longer while batches are still productive.
		if progressed > 0 && st.attempts > maxAttempts-progressHeadroom {
			st.attempts = maxAttempts - progressHeadroom
		}
	}

	if len(st.results) < numResults {
		s.logger.Info("search finished short of quota",
			"found", len(st.results), "wanted", numResults, "attempts", st.attempts)
	}
	if len(st.results) > numResults {
		st.results = st.results[:numResults]
	}
	return st.results
}

// scrapeBatch scrapes every URL concurrently and collects the records in
// input order.
func (s *Service) scrapeBatch(ctx context.Context, urls []string) []*models.ProductRecord {
	records := make([]*models.ProductRecord, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			records[i] = s.ScrapeProduct(gctx, u)
			return nil
		})
	}
	// ScrapeProduct never returns an error; Wait only joins the group.
	_ = g.Wait()

	return records
}
