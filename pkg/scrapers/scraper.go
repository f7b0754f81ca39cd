// Package scrapers holds the site-specific extraction rules and the registry the
// crawl command resolves scraper names against.
package scrapers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/parser"
)

// Scraper extracts recipe fields from the pages of one site.
type Scraper interface {
	Name() string
	// IsInterestingURL reports whether the scraper wants the page fetched. It only looks at the URL.
	IsInterestingURL(rawURL string) bool
	// Cookies returns the request cookies for rawURL, or nil.
	Cookies(rawURL string) []*http.Cookie
	// Parse returns the extracted fields, or nil when the page holds nothing usable.
	Parse(rawURL string, doc *parser.Document) models.Fields
}

// Factory builds a scraper.
type Factory func(logger *slog.Logger) Scraper

// ErrUnknownScraper is returned by New for names missing from the registry.
var ErrUnknownScraper = errors.New("unknown scraper")

// DefaultNames are the scrapers used when the crawl command gets no --scrapers flag.
var DefaultNames = []string{"brewersfriend", "beerrecipes"}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
	aliases   = map[string]string{}
)

// Register adds a factory under name and optional short aliases.
func Register(name string, factory Factory, alias ...string) {
	mu.Lock()
	defer mu.Unlock()

	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("scrapers: Register called twice for %q", name))
	}
	factories[name] = factory
	for _, a := range alias {
		aliases[a] = name
	}
}

// Names lists the registered scraper names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named scrapers, keeping the given order. Duplicates are ignored.
func New(names []string, logger *slog.Logger) ([]Scraper, error) {
	mu.RLock()
	defer mu.RUnlock()

	seen := make(map[string]bool)
	var out []Scraper
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScraper, raw, strings.Join(sortedKeys(factories), ", "))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, factory(logger.With("scraper", name)))
	}
	return out, nil
}

// ParseNames splits a comma separated --scrapers value.
func ParseNames(value string) []string {
	var names []string
	for _, n := range strings.Split(value, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func sortedKeys(m map[string]Factory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hostContains(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host), domain)
}
