package common

import "github.com/urfave/cli/v2"

// DBFlag is the page store address shared by every command.
func DBFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Usage:   "Page store: SQLite path (default brew-crawler.db next to the binary), sqlite://, redis:// or postgres:// address",
		EnvVars: []string{"BREW_CRAWLER_DB"},
	}
}

func VerboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func QuietFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "Only log errors and skip the summary",
	}
}
