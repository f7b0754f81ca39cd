package crawl

import (
	"fmt"
	"io"
	"time"

	"github.com/dtnitsch/brew-crawler/pkg/crawler"
	"gopkg.in/yaml.v3"
)

// RunSummary is printed to stdout when a crawl ends.
type RunSummary struct {
	RunID        string `yaml:"run_id"`
	Seed         string `yaml:"seed"`
	Status       string `yaml:"status"`
	Duration     string `yaml:"duration"`
	PagesFetched int    `yaml:"pages_fetched"`
	FetchErrors  int    `yaml:"fetch_errors"`
	PagesStored  int    `yaml:"pages_stored"`
}

func BuildSummary(runID, seed, status string, started time.Time, stats crawler.Stats) RunSummary {
	return RunSummary{
		RunID:        runID,
		Seed:         seed,
		Status:       status,
		Duration:     time.Since(started).Round(time.Millisecond).String(),
		PagesFetched: stats.PagesFetched,
		FetchErrors:  stats.FetchErrors,
		PagesStored:  stats.PagesStored,
	}
}

func WriteSummary(w io.Writer, s RunSummary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	_, err = w.Write(data)
	return err
}
