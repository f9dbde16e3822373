package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/reconforge/netrecon/internal/model"
)

// PageFetcher retrieves one page. It is the crawler's only I/O dependency,
// kept as an interface so tests can drive the traversal with canned pages.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) *FetchResult
}

// Sleeper pauses between requests. The default implementation waits on a
// timer but aborts early when the context is cancelled; tests substitute a
// recording no-op.
type Sleeper func(ctx context.Context, d time.Duration)

// defaultSleeper waits for d or until ctx is cancelled.
func defaultSleeper(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// VisitFunc observes each successfully fetched page. The CLI uses it for live
// progress output and the database layer for snapshot persistence. The page
// is shared with the crawler and must not be retained past the call.
type VisitFunc func(entry model.CrawledPage, page *model.Page)

// Crawler walks a web site depth-first from a seed URL, bounded by a
// maximum link depth and restricted to the seed's authority. Every state
// the traversal needs lives on this struct, so concurrent crawls of
// different targets never interfere.
type Crawler struct {
	fetcher  PageFetcher
	target   model.CrawlTarget
	maxDepth int
	delay    time.Duration
	sleep    Sleeper
	onVisit  VisitFunc
	logger   *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithFetcher replaces the page fetcher.
func WithFetcher(f PageFetcher) Option {
	return func(c *Crawler) {
		c.fetcher = f
	}
}

// WithMaxDepth sets the maximum link distance from the seed. Depth zero
// fetches only the seed page.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithDelay sets the politeness pause after each request.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.delay = d
	}
}

// WithSleeper replaces how the politeness pause is performed.
func WithSleeper(s Sleeper) Option {
	return func(c *Crawler) {
		c.sleep = s
	}
}

// WithOnVisit registers a callback invoked for every fetched page.
func WithOnVisit(fn VisitFunc) Option {
	return func(c *Crawler) {
		c.onVisit = fn
	}
}

// WithLogger sets the structured logger used for per-page diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a crawler scoped to target with a depth bound of 2,
// a one second delay, and a default HTTP fetcher.
func NewCrawler(target model.CrawlTarget, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:  NewFetcher(),
		target:   target,
		maxDepth: 2,
		delay:    1 * time.Second,
		sleep:    defaultSleeper,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// frame is one pending traversal entry.
type frame struct {
	url   string
	depth int
}

// Crawl walks the site from seedURL and returns every successfully fetched
// page, in discovery order with 1-based indexes. Responses that are not an
// HTML 200 are logged and skipped without a record.
//
// The traversal is an explicit stack rather than recursion: frames are
// (url, depth) pairs, and a page's links are pushed in reverse document
// order so they pop in document order. That reproduces a depth-first walk
// without tying the maximum depth to the call stack.
//
// On context cancellation Crawl stops issuing requests and returns the
// pages collected so far along with ctx.Err(). Callers treat that as a
// partial result, not a failure.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]model.CrawledPage, error) {
	pages := make([]model.CrawledPage, 0)

	if !IsCrawlable(seedURL, c.target) {
		return pages, nil
	}

	visited := make(map[string]bool)
	stack := []frame{{url: seedURL, depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			c.logger.Info("crawl interrupted",
				slog.Int("pages_visited", len(pages)))
			return pages, err
		}

		top := len(stack) - 1
		current := stack[top]
		stack = stack[:top]

		if visited[current.url] {
			continue
		}
		visited[current.url] = true

		result := c.fetcher.Fetch(ctx, current.url)
		c.sleep(ctx, c.delay)

		// Only a 200 HTML response becomes part of the crawl output.
		switch result.Outcome {
		case OutcomeNetworkError:
			c.logger.Warn("fetch failed",
				slog.String("url", current.url),
				slog.String("kind", result.ErrorKind.String()),
				slog.Any("error", result.Err))
			continue
		case OutcomeHTTPError:
			c.logger.Debug("skipping error page",
				slog.String("url", current.url),
				slog.Int("status", result.StatusCode))
			continue
		case OutcomeNonHTML:
			c.logger.Debug("skipping non-html page",
				slog.String("url", current.url),
				slog.String("content_type", result.ContentType))
			continue
		}

		entry := model.CrawledPage{URL: current.url, Index: len(pages) + 1}
		pages = append(pages, entry)

		c.logger.Debug("page fetched",
			slog.String("url", current.url),
			slog.Int("depth", current.depth),
			slog.Int("status", result.StatusCode))

		page := buildPage(current.url, result)
		if c.onVisit != nil {
			c.onVisit(entry, page)
		}

		if current.depth >= c.maxDepth {
			continue
		}

		links := c.extractLinks(result)
		for i := len(links) - 1; i >= 0; i-- {
			if !visited[links[i]] {
				stack = append(stack, frame{url: links[i], depth: current.depth + 1})
			}
		}
	}

	return pages, nil
}

// extractLinks parses the fetched body and returns in-scope links.
// Relative references resolve against the final URL after redirects, so a
// seed that redirects to a different path still yields correct children.
func (c *Crawler) extractLinks(result *FetchResult) []string {
	base := result.FinalURL
	if base == "" {
		return nil
	}

	extractor, err := NewLinkExtractor(base, c.target)
	if err != nil {
		c.logger.Warn("bad base url", slog.String("url", base), slog.Any("error", err))
		return nil
	}

	extracted, err := extractor.Extract(bytes.NewReader(result.Body))
	if err != nil {
		c.logger.Warn("html parse failed", slog.String("url", base), slog.Any("error", err))
		return nil
	}

	return extracted.Links
}

// buildPage converts a fetch result into the page record handed to the
// visit callback.
func buildPage(requestURL string, result *FetchResult) *model.Page {
	page := &model.Page{
		URL:         requestURL,
		FinalURL:    result.FinalURL,
		StatusCode:  result.StatusCode,
		ContentType: result.ContentType,
		Headers:     result.Headers,
	}

	if len(result.Body) > 0 {
		page.Snapshot = string(result.Body)
		page.ComputeHash(result.Body)
		page.TruncateSnapshot()
		page.Title = DocumentTitle(bytes.NewReader(result.Body))
	}

	return page
}
