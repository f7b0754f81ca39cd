package scrapers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// Article field keys.
const (
	ExcerptKey  = "excerpt"
	SiteNameKey = "site_name"
	BylineKey   = "byline"
	LanguageKey = "language"
)

var articleLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Dutch,
	lingua.Italian,
	lingua.Portuguese,
}

func init() {
	Register("article", func(logger *slog.Logger) Scraper {
		return NewArticle(logger)
	})
}

// Article is a site-agnostic scraper that records the readable title and summary
// of any page. It is useful for surveying a site before writing dedicated rules.
type Article struct {
	logger *slog.Logger

	once     sync.Once
	detector lingua.LanguageDetector
}

func NewArticle(logger *slog.Logger) *Article {
	return &Article{logger: logger}
}

func (a *Article) Name() string { return "article" }

func (a *Article) IsInterestingURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (a *Article) Cookies(string) []*http.Cookie { return nil }

func (a *Article) Parse(rawURL string, doc *parser.Document) models.Fields {
	html, err := doc.HTML()
	if err != nil {
		a.logger.Info("failed to render document", "url", rawURL, "error", err)
		return nil
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), pageURL)
	if err != nil {
		a.logger.Debug("no readable content", "url", rawURL, "error", err)
		return nil
	}

	fields := models.Fields{models.ScraperKey: a.Name()}
	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = doc.Title()
	}
	if title == "" {
		return nil
	}
	fields[models.TitleKey] = title

	if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
		fields[ExcerptKey] = excerpt
	}
	if site := strings.TrimSpace(article.SiteName); site != "" {
		fields[SiteNameKey] = site
	}
	if byline := strings.TrimSpace(article.Byline); byline != "" {
		fields[BylineKey] = byline
	}
	if lang := a.detectLanguage(title + " " + article.Excerpt); lang != "" {
		fields[LanguageKey] = lang
	}

	return fields
}

func (a *Article) detectLanguage(text string) string {
	a.once.Do(func() {
		a.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(articleLanguages...).
			Build()
	})

	language, ok := a.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
