package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Command groups the page store inspection subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "Inspect the page store",
		Flags: []cli.Flag{common.DBFlag()},
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored pages",
				Action: ListAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "style", Usage: "Only pages whose style contains this text"},
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum rows (0 = all)"},
				},
			},
			{
				Name:      "show",
				Usage:     "Show one stored page",
				ArgsUsage: "<url>",
				Action:    ShowAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or yaml"},
					&cli.BoolFlag{Name: "raw", Usage: "Include the raw HTML when stored"},
				},
			},
			{
				Name:   "runs",
				Usage:  "List crawl runs (SQLite store only)",
				Action: RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum rows (0 = all)"},
				},
			},
		},
	}
}

func ListAction(c *cli.Context) error {
	st, err := OpenStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	pages, err := PagesByStyle(c.Context, st, c.String("style"))
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(pages) == 0 {
		fmt.Println("No pages found")
		return nil
	}

	total := len(pages)
	if limit := c.Int("limit"); limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"URL", "Last Visit", "Scraper", "Style", "Title"})
	for _, p := range pages {
		t.AppendRow(table.Row{
			p.URL,
			p.LastVisitTime.Local().Format("2006-01-02 15:04:05"),
			p.Fields.String(models.ScraperKey),
			p.Fields.String(models.StyleKey),
			truncate(p.Fields.String(models.TitleKey), 40),
		})
	}
	t.Render()

	fmt.Printf("\nShowing %d of %d pages\n", len(pages), total)
	return nil
}

func ShowAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("Error: URL required. Usage: brew-crawler pages show <url>", 1)
	}

	st, err := OpenStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := LookupPage(c.Context, st, c.Args().First())
	if errors.Is(err, store.ErrNotFound) {
		return cli.Exit(fmt.Sprintf("No page stored for %s", c.Args().First()), 1)
	}
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}
	if !c.Bool("raw") {
		rec.RawContent = nil
	}

	// Round trip through the flat document so both formats show the stored shape
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	switch c.String("format") {
	case "yaml":
		var flat map[string]any
		if err := json.Unmarshal(doc, &flat); err != nil {
			return fmt.Errorf("failed to decode page: %w", err)
		}
		out, err := yaml.Marshal(flat)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(out))
	default:
		out, err := json.MarshalIndent(json.RawMessage(doc), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(out))
	}
	return nil
}

func RunsAction(c *cli.Context) error {
	st, err := OpenStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	sqlite, ok := st.(*store.SQLiteStore)
	if !ok {
		return cli.Exit("Error: crawl runs are only recorded in the SQLite store", 1)
	}

	runs, err := sqlite.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No crawl runs found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Status", "Fetched", "Errors", "Stored", "Seed"})
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			r.RunID[:min(8, len(r.RunID))],
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			r.Status,
			r.PagesFetched,
			r.FetchErrors,
			r.PagesStored,
			r.Seed,
		})
	}
	t.Render()

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n-1])) + "…"
}
