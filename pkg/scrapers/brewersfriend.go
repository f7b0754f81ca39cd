package scrapers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
)

const brewersFriendDomain = "brewersfriend.com"

func init() {
	Register("brewersfriend", func(logger *slog.Logger) Scraper {
		return NewBrewersFriend(logger)
	}, "bf")
}

// SearchSettings is the JSON document brewersfriend.com keeps in the search_settings cookie.
type SearchSettings struct {
	Keyword string `json:"keyword"`
	Method  string `json:"method"`
	Units   string `json:"units"`
}

// BrewersFriend reads recipe pages from brewersfriend.com.
type BrewersFriend struct {
	logger   *slog.Logger
	settings SearchSettings
}

func NewBrewersFriend(logger *slog.Logger) *BrewersFriend {
	return &BrewersFriend{
		logger: logger,
		settings: SearchSettings{
			Keyword: "session ipa",
			Method:  "allgrain",
			Units:   "us",
		},
	}
}

// WithSearchSettings replaces the settings sent to search pages.
func (b *BrewersFriend) WithSearchSettings(s SearchSettings) *BrewersFriend {
	b.settings = s
	return b
}

func (b *BrewersFriend) Name() string { return "brewersfriend" }

func (b *BrewersFriend) IsInterestingURL(rawURL string) bool {
	return hostContains(rawURL, brewersFriendDomain)
}

// Cookies restricts search result pages to all-grain recipes in US units.
func (b *BrewersFriend) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	if !strings.Contains(strings.ToLower(u.Host), brewersFriendDomain) || !strings.Contains(u.Path, "search") {
		return nil
	}

	data, err := json.Marshal(b.settings)
	if err != nil {
		return nil
	}
	return []*http.Cookie{{Name: "search_settings", Value: url.QueryEscape(string(data))}}
}

func (b *BrewersFriend) Parse(rawURL string, doc *parser.Document) models.Fields {
	recipe := models.Fields{models.ScraperKey: b.Name()}

	title := doc.Find("div", parser.ID("viewTitle")).Find("h3")
	if title == nil {
		b.logger.Debug("title not found", "url", rawURL)
		return nil
	}
	recipe[models.TitleKey] = title.Text()

	style := doc.Find("span", parser.ItemProp("recipeCategory"))
	if style == nil {
		b.logger.Info("style not found", "url", rawURL)
		return nil
	}
	recipe[models.StyleKey] = style.Text()

	yield := doc.Find("span", parser.ItemProp("recipeYield"))
	if yield == nil {
		b.logger.Info("yield size not found", "url", rawURL)
		return nil
	}
	recipe[models.YieldKey] = yield.Text()

	grains := parser.ExtractTable(doc.Find("div", parser.ID("fermentables")))
	if grains == nil || len(grains.Headers) == 0 {
		b.logger.Info("fermentables table not found", "url", rawURL)
		return nil
	}
	recipe[models.GrainsKey] = grains.Records(nil)

	hops := parser.ExtractTable(doc.Find("div", parser.ID("hops")))
	if hops == nil || len(hops.Headers) == 0 {
		b.logger.Info("hops table not found", "url", rawURL)
		return nil
	}
	recipe[models.HopsKey] = hops.Records(parser.LinkText)

	yeastHead := doc.Find("div", parser.ID("yeasts")).Find("table").Find("thead")
	if yeastHead == nil {
		b.logger.Info("yeasts table not found", "url", rawURL)
		return nil
	}
	var yeasts []any
	for _, row := range yeastHead.FindAll("tr") {
		if text := row.Text(); text != "" {
			yeasts = append(yeasts, text)
		}
	}
	recipe[models.YeastsKey] = yeasts

	return recipe
}
