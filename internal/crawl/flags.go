package crawl

import (
	"strings"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/pkg/scrapers"
	"github.com/urfave/cli/v2"
)

// Command is the crawl subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "crawl",
		Usage:  "Crawl recipe pages from a seed URL or a saved HTML file",
		Flags:  Flags(),
		Action: CrawlAction,
	}
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "Local HTML file to start from",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "URL the --file was saved from; resolves its relative links and enables storing it",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Seed URL to crawl",
		},
		&cli.Float64Flag{
			Name:  "rate",
			Value: 1,
			Usage: "Minimum seconds between consecutive fetches",
		},
		&cli.IntFlag{
			Name:  "max-depth",
			Usage: "Stop following links at this depth (0 = unlimited)",
		},
		&cli.Int64Flag{
			Name:  "min-revisit",
			Value: 86400,
			Usage: "Skip stored pages visited less than this many seconds ago (0 = always revisit)",
		},
		&cli.StringFlag{
			Name:    "scrapers",
			Value:   strings.Join(scrapers.DefaultNames, ","),
			Usage:   "Comma-separated scrapers to run (available: " + strings.Join(scrapers.Names(), ", ") + ")",
			EnvVars: []string{"BREW_CRAWLER_SCRAPERS"},
		},
		common.DBFlag(),
		&cli.BoolFlag{
			Name:  "stay-on-origin",
			Value: true,
			Usage: "Only follow links on the seed host",
		},
		&cli.BoolFlag{
			Name:  "keep-raw",
			Usage: "Store the raw HTML of each page",
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Serve Prometheus metrics and /healthz on this address (e.g. :9090)",
			EnvVars: []string{"BREW_CRAWLER_METRICS_ADDR"},
		},
		common.VerboseFlag(),
		common.QuietFlag(),
	}
}
