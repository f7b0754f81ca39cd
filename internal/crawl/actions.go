package crawl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/pkg/crawler"
	"github.com/dtnitsch/brew-crawler/pkg/db"
	"github.com/dtnitsch/brew-crawler/pkg/metrics"
	"github.com/dtnitsch/brew-crawler/pkg/scrapers"
	"github.com/dtnitsch/brew-crawler/pkg/store"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func CrawlAction(c *cli.Context) error {
	runID := uuid.NewString()
	logger := common.NewLogger(c.Bool("verbose"), c.Bool("quiet")).With("run_id", runID)

	file := c.String("file")
	seedURL := common.SanitizeURL(c.String("url"))
	if file == "" && seedURL == "" {
		printUsage()
		return cli.Exit("", 1)
	}

	scraperList, err := scrapers.New(scrapers.ParseNames(c.String("scrapers")), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", 1)
	}

	// SIGINT/SIGTERM stop new fetches; the page in flight completes
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, c.String("db"))
	if err != nil {
		logger.Error("failed to open page store", "error", err)
		return cli.Exit("", 2)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	serverCtx, stopServer := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if addr := c.String("metrics-addr"); addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(serverCtx, addr, reg, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}
	defer func() {
		stopServer()
		wg.Wait()
	}()

	cfg := ConfigFromFlags(c)
	cr := crawler.New(cfg, scraperList, st, logger).WithMetrics(m)

	seed := seedURL
	if file != "" {
		seed = file
	}

	// Run tracking is only available on the SQLite store
	runs, _ := st.(*store.SQLiteStore)
	startTime := time.Now()
	if runs != nil {
		if err := runs.StartRun(ctx, runID, seed, startTime); err != nil {
			logger.Warn("failed to record crawl run", "error", err)
		}
	}

	logger.Info("crawl started",
		"seed", seed,
		"scrapers", scraperNames(scraperList),
		"max_depth", cfg.MaxDepth,
		"rate_limit", cfg.RateLimit.String(),
		"min_revisit", cfg.MinRevisit.String(),
		"stay_on_origin", cfg.StayOnSeedOrigin)

	if file != "" {
		cr.CrawlFile(ctx, file, c.String("base-url"))
	}
	if seedURL != "" && ctx.Err() == nil {
		cr.CrawlURL(ctx, "", seedURL, 0)
	}

	status := db.RunCompleted
	if ctx.Err() != nil {
		status = db.RunInterrupted
	}
	stats := cr.Stats()

	if runs != nil {
		runStats := db.RunStats{
			PagesFetched: stats.PagesFetched,
			FetchErrors:  stats.FetchErrors,
			PagesStored:  stats.PagesStored,
		}
		if err := runs.FinishRun(context.WithoutCancel(ctx), runID, status, runStats, time.Now()); err != nil {
			logger.Warn("failed to finish crawl run", "error", err)
		}
	}

	summary := BuildSummary(runID, seed, status, startTime, stats)
	logger.Info("crawl finished", "status", status, "stats", stats.String(), "duration", summary.Duration)

	if !c.Bool("quiet") {
		if err := WriteSummary(os.Stdout, summary); err != nil {
			logger.Error("failed to write summary", "error", err)
		}
	}
	return nil
}

// ConfigFromFlags maps the crawl flags onto the engine configuration.
func ConfigFromFlags(c *cli.Context) crawler.Config {
	return crawler.Config{
		MaxDepth:         c.Int("max-depth"),
		MinRevisit:       time.Duration(c.Int64("min-revisit")) * time.Second,
		RateLimit:        time.Duration(c.Float64("rate") * float64(time.Second)),
		StayOnSeedOrigin: c.Bool("stay-on-origin"),
		KeepRaw:          c.Bool("keep-raw"),
	}
}

func scraperNames(list []scrapers.Scraper) []string {
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name()
	}
	return names
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Error: No seed provided")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, `  brew-crawler crawl --url "https://www.brewersfriend.com/search/?q=ipa"`)
	fmt.Fprintln(os.Stderr, `  brew-crawler crawl --file saved.html --base-url "https://beerrecipes.org/"`)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Need help? Run: brew-crawler crawl --help")
}
