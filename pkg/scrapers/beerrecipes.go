package scrapers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
)

const beerRecipesDomain = "beerrecipes.org"

func init() {
	Register("beerrecipes", func(logger *slog.Logger) Scraper {
		return NewBeerRecipes(logger)
	}, "br")
}

var (
	hopMarkers   = []string{"minute", "flameout", "knockout", "end of boil", "dry hop"}
	yeastMarkers = []string{"pack", "yeast"}
)

// BeerRecipes reads recipe pages from beerrecipes.org, whose ingredients are free-text lines.
type BeerRecipes struct {
	logger *slog.Logger
}

func NewBeerRecipes(logger *slog.Logger) *BeerRecipes {
	return &BeerRecipes{logger: logger}
}

func (b *BeerRecipes) Name() string { return "beerrecipes" }

func (b *BeerRecipes) IsInterestingURL(rawURL string) bool {
	return hostContains(rawURL, beerRecipesDomain)
}

func (b *BeerRecipes) Cookies(string) []*http.Cookie { return nil }

func (b *BeerRecipes) Parse(rawURL string, doc *parser.Document) models.Fields {
	name := doc.Find("h1", parser.ItemProp("name"))
	if name == nil {
		b.logger.Debug("brew name not found", "url", rawURL)
		return nil
	}

	recipe := models.Fields{
		models.ScraperKey: b.Name(),
		models.TitleKey:   name.Text(),
	}

	grains, hops, yeasts := []any{}, []any{}, []any{}
	for _, item := range doc.FindAll("span", parser.ItemProp("ingredients")) {
		text := item.Text()
		if text == "" {
			continue
		}
		switch lower := strings.ToLower(text); {
		case containsAny(lower, hopMarkers):
			hops = append(hops, text)
		case containsAny(lower, yeastMarkers):
			yeasts = append(yeasts, text)
		default:
			grains = append(grains, text)
		}
	}
	recipe[models.GrainsKey] = grains
	recipe[models.HopsKey] = hops
	recipe[models.YeastsKey] = yeasts

	if y := doc.Find("span", parser.ItemProp("recipeYield")); y != nil {
		recipe[models.YieldKey] = y.Text()
	}

	if style := findStyle(doc); style != "" {
		recipe[models.StyleKey] = style
	} else {
		b.logger.Info("beer style not found", "url", rawURL)
	}

	return recipe
}

// findStyle reads the text following "Beer Style:" up to the end of its line.
func findStyle(doc *parser.Document) string {
	const marker = "Beer Style:"
	var style string
	for _, p := range doc.FindAll("p") {
		text := p.RawText()
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(marker):]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		style = strings.TrimSpace(rest)
	}
	return style
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
