package scrape

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/caching"
	"github.com/dtnitsch/brew-crawler/pkg/fetcher"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
	"github.com/dtnitsch/brew-crawler/pkg/scrapers"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Command is the scrape subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "scrape",
		Usage:  "Run one scraper against a single URL or file and print the extracted fields",
		Action: ScrapeAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scraper",
				Aliases:  []string{"s"},
				Required: true,
				Usage:    "Scraper name (e.g. brewersfriend, beerrecipes, article)",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Page to fetch",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Saved HTML file to parse instead of fetching",
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				EnvVars: []string{"BREW_CRAWLER_CACHE_DIR"},
				Usage:   "Keep fetched pages here and reuse them (off when empty)",
			},
			&cli.DurationFlag{
				Name:  "cache-ttl",
				Value: time.Hour,
				Usage: "How long a cached page stays fresh",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "Output format: json or yaml",
			},
			common.VerboseFlag(),
		},
	}
}

func ScrapeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("verbose"), false)

	list, err := scrapers.New([]string{c.String("scraper")}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", 1)
	}
	s := list[0]

	rawURL := common.SanitizeURL(c.String("url"))
	file := c.String("file")
	if rawURL == "" && file == "" {
		fmt.Fprintln(os.Stderr, "Error: one of --url or --file is required")
		return cli.Exit("", 1)
	}

	var body []byte
	var contentType string
	if file != "" {
		body, err = os.ReadFile(file)
		if err != nil {
			logger.Error("failed to read file", "path", file, "error", err)
			return cli.Exit("", 2)
		}
	} else {
		resp, err := fetchPage(c, rawURL, s, logger)
		if err != nil {
			logger.Error("failed to fetch page", "url", rawURL, "error", err)
			return cli.Exit("", 2)
		}
		body, contentType = resp.Body, resp.ContentType
	}

	doc, err := parser.NewDocument(body, contentType)
	if err != nil {
		logger.Error("failed to parse document", "error", err)
		return cli.Exit("", 2)
	}

	fields := s.Parse(rawURL, doc)
	if fields == nil {
		logger.Warn("scraper extracted nothing", "scraper", s.Name(), "url", rawURL)
		fields = models.Fields{}
	}
	return WriteFields(os.Stdout, c.String("format"), fields)
}

// fetchPage fetches rawURL, going through the page cache when --cache-dir is set.
func fetchPage(c *cli.Context, rawURL string, s scrapers.Scraper, logger *slog.Logger) (*fetcher.Response, error) {
	dir := c.String("cache-dir")
	if dir == "" {
		return fetcher.NewFetcher().Get(c.Context, rawURL, s.Cookies(rawURL))
	}

	cache, err := caching.New(dir, c.Duration("cache-ttl"))
	if err != nil {
		return nil, err
	}
	if resp, ok := cache.Get(rawURL); ok {
		logger.Debug("using cached page", "url", rawURL)
		return resp, nil
	}

	resp, err := fetcher.NewFetcher().Get(c.Context, rawURL, s.Cookies(rawURL))
	if err != nil {
		return nil, err
	}
	if err := cache.Put(rawURL, resp); err != nil {
		logger.Warn("failed to cache page", "url", rawURL, "error", err)
	}
	return resp, nil
}

// WriteFields prints extracted fields as JSON or YAML.
func WriteFields(w io.Writer, format string, fields models.Fields) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return cli.Exit(fmt.Sprintf("Error: unknown format %q (use json or yaml)", format), 1)
}
