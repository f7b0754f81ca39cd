package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/brew-crawler/internal/crawl"
	"github.com/dtnitsch/brew-crawler/internal/db"
	"github.com/dtnitsch/brew-crawler/internal/recipe"
	"github.com/dtnitsch/brew-crawler/internal/scrape"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "brew-crawler",
		Usage:   "Crawl homebrew recipe sites and average what they publish",
		Version: version,
		Commands: []*cli.Command{
			crawl.Command(),
			recipe.Command(),
			scrape.Command(),
			db.Command(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
