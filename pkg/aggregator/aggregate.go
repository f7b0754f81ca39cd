// Package aggregator builds the "average recipe" of a beer style from the stored pages.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/mapreduce"
	"github.com/dtnitsch/brew-crawler/pkg/normalizer"
	"github.com/dtnitsch/brew-crawler/pkg/store"
)

// Thresholds below which the aggregate is flagged as insufficient.
const (
	MinDistinctGrains = 3
	MinDistinctHops   = 3
	MinYeasts         = 1
)

const (
	DefaultTopGrains = 4
	DefaultTopHops   = 3
	DefaultYield     = 5.0
)

// PageSource is the part of the page store the aggregator reads.
type PageSource interface {
	RetrieveAllPages(ctx context.Context) ([]*models.PageRecord, error)
}

var _ PageSource = store.Store(nil)

type Aggregator struct {
	pages     PageSource
	norm      *normalizer.Normalizer
	logger    *slog.Logger
	topGrains int
	topHops   int
}

func New(pages PageSource, norm *normalizer.Normalizer, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		pages:     pages,
		norm:      norm,
		logger:    logger,
		topGrains: DefaultTopGrains,
		topHops:   DefaultTopHops,
	}
}

// WithTop sets how many grains and hops go into the synthesized recipe.
func (a *Aggregator) WithTop(grains, hops int) *Aggregator {
	if grains > 0 {
		a.topGrains = grains
	}
	if hops > 0 {
		a.topHops = hops
	}
	return a
}

// tally accumulates ingredient names and their pound amounts across recipes.
type tally struct {
	counts []map[string]int
	pounds map[string][]float64
}

func newTally() *tally {
	return &tally{pounds: make(map[string][]float64)}
}

func (t *tally) add(entries []models.Ingredient) {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		if e.Unit == "lbs" {
			t.pounds[e.Name] = append(t.pounds[e.Name], e.Quantity)
		}
	}
	t.counts = append(t.counts, mapreduce.Map(names))
}

func (t *tally) addNames(names []string) {
	t.counts = append(t.counts, mapreduce.Map(names))
}

// top returns the n most frequent names.
func (t *tally) top(n int) []string {
	return mapreduce.Top(mapreduce.Reduce(t.counts), n)
}

func (t *tally) ranked() []models.RankedIngredient {
	items := mapreduce.Rank(mapreduce.Reduce(t.counts), 0)
	out := make([]models.RankedIngredient, len(items))
	for i, item := range items {
		out[i] = models.RankedIngredient{Name: item.Name, Count: item.Count}
		if amounts := t.pounds[item.Name]; len(amounts) > 0 {
			var sum float64
			for _, v := range amounts {
				sum += v
			}
			out[i].AverageAmount = sum / float64(len(amounts))
			out[i].Unit = "lbs"
		}
	}
	return out
}

// GenerateAverageRecipe aggregates every stored recipe whose style contains
// style (case-insensitive), with amounts scaled to desiredYield gallons. An
// insufficient result is still returned, flagged and with warnings.
func (a *Aggregator) GenerateAverageRecipe(ctx context.Context, style string, desiredYield float64) (*models.AverageRecipe, error) {
	pages, err := a.pages.RetrieveAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve pages: %w", err)
	}

	grains, hops, yeasts := newTally(), newTally(), newTally()
	result := &models.AverageRecipe{Style: style, DesiredYield: desiredYield}

	query := strings.ToLower(strings.TrimSpace(style))
	for _, p := range pages {
		recipeStyle := p.Fields.String(models.StyleKey)
		if recipeStyle == "" || !strings.Contains(strings.ToLower(recipeStyle), query) {
			continue
		}
		result.RecipeCount++

		scale := scaleFactor(p.Fields.String(models.YieldKey), desiredYield)
		g, h := a.norm.NormalizeIngredients(p.Fields.List(models.GrainsKey), p.Fields.List(models.HopsKey), scale)
		grains.add(g)
		hops.add(h)
		yeasts.addNames(a.norm.NormalizeYeasts(p.Fields.List(models.YeastsKey)))

		a.logger.Debug("recipe aggregated", "url", p.URL, "style", recipeStyle, "scale", scale,
			"grains", len(g), "hops", len(h))
	}

	result.Grains = grains.ranked()
	result.Hops = hops.ranked()
	result.Yeasts = yeasts.ranked()
	result.Recipe = a.synthesize(result, yeasts.top(1))
	result.Sufficient, result.Warnings = sufficiency(result)

	return result, nil
}

func (a *Aggregator) synthesize(r *models.AverageRecipe, yeasts []string) models.SynthesizedRecipe {
	var recipe models.SynthesizedRecipe
	for _, g := range head(r.Grains, a.topGrains) {
		recipe.Grains = append(recipe.Grains, models.RankedIngredient{
			Name:          g.Name,
			Count:         g.Count,
			AverageAmount: g.AverageAmount,
			Unit:          g.Unit,
		})
	}
	for _, h := range head(r.Hops, a.topHops) {
		recipe.Hops = append(recipe.Hops, models.RankedIngredient{Name: h.Name, Count: h.Count})
	}
	if len(yeasts) > 0 {
		recipe.Yeast = yeasts[0]
	}
	return recipe
}

func sufficiency(r *models.AverageRecipe) (bool, []string) {
	var warnings []string
	if r.RecipeCount == 0 {
		warnings = append(warnings, fmt.Sprintf("no stored recipes match style %q", r.Style))
	}
	if n := len(r.Grains); n < MinDistinctGrains {
		warnings = append(warnings, fmt.Sprintf("insufficient data: %d distinct grains, need at least %d", n, MinDistinctGrains))
	}
	if n := len(r.Hops); n < MinDistinctHops {
		warnings = append(warnings, fmt.Sprintf("insufficient data: %d distinct hops, need at least %d", n, MinDistinctHops))
	}
	if n := len(r.Yeasts); n < MinYeasts {
		warnings = append(warnings, fmt.Sprintf("insufficient data: %d yeasts, need at least %d", n, MinYeasts))
	}
	return len(warnings) == 0, warnings
}

// scaleFactor is desiredYield over the declared yield in gallons, or 1 when
// the declared yield is missing or unparseable. Hop amounts are scaled by the
// same factor, which only approximates how bitterness scales with volume.
func scaleFactor(declared string, desiredYield float64) float64 {
	if desiredYield <= 0 || declared == "" {
		return 1.0
	}
	q, err := normalizer.ParseAmount(declared, 1.0)
	if err != nil || q.Unit != "gal" || q.Value <= 0 {
		return 1.0
	}
	return desiredYield / q.Value
}

// ListStyles returns every distinct stored style with its recipe count, most common first.
func (a *Aggregator) ListStyles(ctx context.Context) ([]models.StyleCount, error) {
	pages, err := a.pages.RetrieveAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve pages: %w", err)
	}

	var styles []string
	for _, p := range pages {
		if s := strings.TrimSpace(p.Fields.String(models.StyleKey)); s != "" {
			styles = append(styles, s)
		}
	}

	ranked := mapreduce.Rank(mapreduce.Map(styles), 0)
	out := make([]models.StyleCount, len(ranked))
	for i, r := range ranked {
		out[i] = models.StyleCount{Style: r.Name, Count: r.Count}
	}
	return out, nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
