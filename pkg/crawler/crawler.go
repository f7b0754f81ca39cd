// Package crawler walks linked pages depth first, handing each fetched page to
// the site scrapers and persisting what they extract.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/fetcher"
	"github.com/dtnitsch/brew-crawler/pkg/metrics"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
	"github.com/dtnitsch/brew-crawler/pkg/scrapers"
	"github.com/dtnitsch/brew-crawler/pkg/store"
)

// Config bounds a crawl. Zero values leave a limit unset.
type Config struct {
	MaxDepth         int
	MinRevisit       time.Duration
	RateLimit        time.Duration
	StayOnSeedOrigin bool
	KeepRaw          bool
}

// Stats are the per-session counters.
type Stats struct {
	PagesFetched int
	FetchErrors  int
	PagesStored  int
}

// Crawler holds the state of one crawl session. It is not safe for concurrent use.
type Crawler struct {
	cfg      Config
	fetcher  *fetcher.Fetcher
	scrapers []scrapers.Scraper
	store    store.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool

	seedHost  string
	visited   map[string]bool
	errorURLs map[string]bool
	lastFetch time.Time
	stats     Stats
}

// New creates a crawler. st may be nil, in which case nothing is persisted.
func New(cfg Config, scraperList []scrapers.Scraper, st store.Store, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Crawler{
		cfg:       cfg,
		fetcher:   fetcher.NewFetcher(),
		scrapers:  scraperList,
		store:     st,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
		visited:   make(map[string]bool),
		errorURLs: make(map[string]bool),
	}
}

// WithFetcher replaces the default fetcher.
func (c *Crawler) WithFetcher(f *fetcher.Fetcher) *Crawler {
	c.fetcher = f
	return c
}

// WithMetrics records crawl counters on m.
func (c *Crawler) WithMetrics(m *metrics.Metrics) *Crawler {
	c.metrics = m
	return c
}

// Stats returns the counters accumulated so far.
func (c *Crawler) Stats() Stats {
	return c.stats
}

// CrawlURL crawls childURL, resolved against parentURL, and then the links it
// contains. It reports whether childURL itself was fetched. Failures are logged
// and never returned.
func (c *Crawler) CrawlURL(ctx context.Context, parentURL, childURL string, depth int) bool {
	if c.cfg.MaxDepth > 0 && depth >= c.cfg.MaxDepth {
		c.skip(childURL, metrics.SkipDepth, "depth", depth)
		return false
	}

	target, err := common.CanonicalURL(parentURL, childURL)
	if err != nil {
		c.skip(childURL, metrics.SkipInvalidURL, "error", err)
		return false
	}

	host := common.Hostname(target)
	if c.seedHost == "" {
		c.seedHost = host
	}
	if c.cfg.StayOnSeedOrigin && host != c.seedHost {
		c.skip(target, metrics.SkipOffOrigin, "host", host, "seed_host", c.seedHost)
		return false
	}

	if c.errorURLs[target] {
		c.skip(target, metrics.SkipQuarantined)
		return false
	}
	if c.visited[target] {
		c.skip(target, metrics.SkipVisited)
		return false
	}

	interested := c.interestedScrapers(target)
	if len(c.scrapers) > 0 && len(interested) == 0 {
		c.skip(target, metrics.SkipUninterest)
		return false
	}

	if c.cfg.MinRevisit > 0 && depth > 0 && c.store != nil && c.visitedRecently(ctx, target) {
		c.skip(target, metrics.SkipRecent)
		return false
	}

	c.logger.Debug("fetching", "url", target, "depth", depth)
	start := c.now()
	// An interrupt must not abort the request in flight
	resp, err := c.fetcher.Get(context.WithoutCancel(ctx), target, cookiesFor(interested, target))
	c.lastFetch = c.now()
	if err != nil {
		c.errorURLs[target] = true
		c.stats.FetchErrors++
		c.metrics.FetchError(fetchErrorKind(err))
		c.logger.Warn("fetch failed", "url", target, "error", err)
		return false
	}
	c.visited[target] = true
	c.stats.PagesFetched++
	c.metrics.Fetched(c.lastFetch.Sub(start))

	links := c.process(ctx, target, resp.Body, resp.ContentType, interested)
	c.followLinks(ctx, target, links, depth)
	return true
}

// CrawlFile parses a local HTML file as if it had been fetched from baseURL and
// crawls the links it contains. With an empty baseURL every scraper is tried,
// relative links cannot be resolved and nothing is persisted.
func (c *Crawler) CrawlFile(ctx context.Context, path, baseURL string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("failed to read file", "path", path, "error", err)
		return false
	}

	identity := ""
	if baseURL != "" {
		identity, err = common.CanonicalURL("", baseURL)
		if err != nil {
			c.logger.Error("invalid base URL", "base_url", baseURL, "error", err)
			return false
		}
		c.seedHost = common.Hostname(identity)
		c.visited[identity] = true
	}

	candidates := c.scrapers
	if identity != "" {
		candidates = c.interestedScrapers(identity)
	}

	links := c.process(ctx, identity, content, "", candidates)
	c.lastFetch = c.now()
	c.followLinks(ctx, identity, links, 0)
	return true
}

// process parses the document, runs the candidate scrapers and persists the
// result. It returns the harvested links.
func (c *Crawler) process(ctx context.Context, pageURL string, body []byte, contentType string, candidates []scrapers.Scraper) []string {
	doc, err := parser.NewDocument(body, contentType)
	if err != nil {
		c.logger.Warn("failed to parse document", "url", pageURL, "error", err)
		return nil
	}

	var fields models.Fields
	for _, s := range candidates {
		if f := s.Parse(pageURL, doc); len(f) > 0 {
			fields = f
			c.logger.Debug("page scraped", "url", pageURL, "scraper", s.Name(), "fields", len(f))
			break
		}
	}

	if pageURL != "" && c.store != nil {
		c.persist(ctx, pageURL, body, fields)
	}

	return doc.Links()
}

func (c *Crawler) persist(ctx context.Context, pageURL string, body []byte, fields models.Fields) {
	if fields == nil {
		fields = models.Fields{}
	}
	rec := &models.PageRecord{
		URL:           pageURL,
		LastVisitTime: c.now().UTC(),
		Fields:        fields,
	}
	if c.cfg.KeepRaw {
		rec.RawContent = body
	}

	op, err := store.Save(context.WithoutCancel(ctx), c.store, rec)
	if err != nil {
		c.metrics.StoreError()
		c.logger.Error("failed to store page", "url", pageURL, "op", op, "error", err)
		return
	}
	c.stats.PagesStored++
	c.metrics.Store(op)
	c.logger.Debug("page stored", "url", pageURL, "op", op)
}

func (c *Crawler) followLinks(ctx context.Context, parentURL string, links []string, depth int) {
	for _, link := range links {
		if ctx.Err() != nil {
			c.logger.Info("crawl cancelled", "parent", parentURL, "depth", depth)
			return
		}
		if !c.waitForRateLimit(ctx) {
			return
		}
		c.CrawlURL(ctx, parentURL, link, depth+1)
	}
}

// rateLimitDelay is the part of the rate limit not yet elapsed since the last fetch.
func (c *Crawler) rateLimitDelay() time.Duration {
	if c.cfg.RateLimit <= 0 || c.lastFetch.IsZero() {
		return 0
	}
	return c.cfg.RateLimit - c.now().Sub(c.lastFetch)
}

func (c *Crawler) waitForRateLimit(ctx context.Context) bool {
	d := c.rateLimitDelay()
	if d <= 0 {
		return true
	}
	return c.sleep(ctx, d)
}

func (c *Crawler) interestedScrapers(rawURL string) []scrapers.Scraper {
	var out []scrapers.Scraper
	for _, s := range c.scrapers {
		if s.IsInterestingURL(rawURL) {
			out = append(out, s)
		}
	}
	return out
}

// visitedRecently treats lookup failures as "not stored".
func (c *Crawler) visitedRecently(ctx context.Context, rawURL string) bool {
	rec, err := c.store.RetrievePage(ctx, rawURL)
	if err != nil {
		c.logger.Debug("revisit lookup found nothing", "url", rawURL, "error", err)
		return false
	}
	return c.now().Sub(rec.LastVisitTime) < c.cfg.MinRevisit
}

func (c *Crawler) skip(rawURL, reason string, args ...any) {
	c.metrics.Skip(reason)
	c.logger.Debug("skipping url", append([]any{"url", rawURL, "reason", reason}, args...)...)
}

func cookiesFor(candidates []scrapers.Scraper, rawURL string) []*http.Cookie {
	for _, s := range candidates {
		if cookies := s.Cookies(rawURL); cookies != nil {
			return cookies
		}
	}
	return nil
}

func fetchErrorKind(err error) string {
	if errors.Is(err, fetcher.ErrUnexpectedStatus) {
		return "status"
	}
	return "transport"
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("fetched=%d errors=%d stored=%d", s.PagesFetched, s.FetchErrors, s.PagesStored)
}
