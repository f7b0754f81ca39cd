package recipe

import (
	"fmt"
	"os"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/aggregator"
	"github.com/dtnitsch/brew-crawler/pkg/normalizer"
	"github.com/dtnitsch/brew-crawler/pkg/store"
	"github.com/urfave/cli/v2"
)

// Command is the recipe subcommand.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "recipe",
		Usage:  "Aggregate stored recipes of a style into an average recipe",
		Action: RecipeAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "style",
				Usage: "Style to aggregate (case-insensitive substring, e.g. \"ipa\"; empty = all styles)",
			},
			common.DBFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "Output YAML",
			},
			&cli.BoolFlag{
				Name:  "list-styles",
				Usage: "List stored styles with their recipe counts",
			},
			&cli.Float64Flag{
				Name:  "yield",
				Value: aggregator.DefaultYield,
				Usage: "Batch size in gallons to scale amounts to",
			},
			&cli.IntFlag{
				Name:  "top-grains",
				Value: aggregator.DefaultTopGrains,
				Usage: "Grains in the synthesized recipe",
			},
			&cli.IntFlag{
				Name:  "top-hops",
				Value: aggregator.DefaultTopHops,
				Usage: "Hops in the synthesized recipe",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML vocabulary file extending exclusions, hop varieties and grain aliases",
				EnvVars: []string{"BREW_CRAWLER_CONFIG"},
			},
			common.VerboseFlag(),
		},
	}
}

func RecipeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("verbose"), false)

	format, err := OutputFormat(c.Bool("json"), c.Bool("yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", 1)
	}

	style := c.String("style")

	var vocab *models.VocabularyConfig
	if path := c.String("config"); path != "" {
		vocab, err = models.LoadConfig(path)
		if err != nil {
			logger.Error("failed to load vocabulary config", "path", path, "error", err)
			return cli.Exit("", 2)
		}
	}

	norm, err := normalizer.New(vocab, logger)
	if err != nil {
		logger.Error("invalid vocabulary config", "error", err)
		return cli.Exit("", 2)
	}

	st, err := store.Open(c.Context, c.String("db"))
	if err != nil {
		logger.Error("failed to open page store", "error", err)
		return cli.Exit("", 2)
	}
	defer st.Close()

	agg := aggregator.New(st, norm, logger).WithTop(c.Int("top-grains"), c.Int("top-hops"))

	if c.Bool("list-styles") {
		styles, err := agg.ListStyles(c.Context)
		if err != nil {
			logger.Error("failed to list styles", "error", err)
			return cli.Exit("", 2)
		}
		return aggregator.Render(os.Stdout, format, styles)
	}

	result, err := agg.GenerateAverageRecipe(c.Context, style, c.Float64("yield"))
	if err != nil {
		logger.Error("failed to aggregate recipes", "style", style, "error", err)
		return cli.Exit("", 2)
	}
	if !result.Sufficient {
		logger.Warn("insufficient data for style", "style", style, "recipes", result.RecipeCount, "warnings", result.Warnings)
	}
	return aggregator.Render(os.Stdout, format, result)
}

// OutputFormat picks the render format from the --json and --yaml flags.
func OutputFormat(asJSON, asYAML bool) (string, error) {
	switch {
	case asJSON && asYAML:
		return "", fmt.Errorf("--json and --yaml are mutually exclusive")
	case asJSON:
		return aggregator.FormatJSON, nil
	case asYAML:
		return aggregator.FormatYAML, nil
	}
	return aggregator.FormatTable, nil
}
