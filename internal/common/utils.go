package common

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// ErrUnsupportedURL is returned for links the crawler cannot fetch (mailto:, javascript:, relative without a base).
var ErrUnsupportedURL = errors.New("unsupported URL")

const canonicalFlags = purell.FlagsSafe |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagSortQuery

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on user supplied URLs to handle copy-paste issues.
// Removes whitespace, trailing punctuation and markdown link wrapping.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// "[click here](https://example.com)" -> "https://example.com"
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ResolveURL joins child against parent using standard reference resolution.
// An empty parent leaves child as is.
func ResolveURL(parent, child string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(child))
	if err != nil {
		return nil, fmt.Errorf("failed to parse link %q: %w", child, err)
	}
	if parent == "" {
		return ref, nil
	}

	base, err := url.Parse(parent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parent %q: %w", parent, err)
	}
	return base.ResolveReference(ref), nil
}

// Canonicalize normalizes scheme and host casing, percent-encoding, dot segments
// and query order, and removes the fragment. The query itself is kept.
func Canonicalize(u *url.URL) (string, error) {
	if u == nil {
		return "", ErrUnsupportedURL
	}

	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	if c.Scheme != "http" && c.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, u.String())
	}
	if c.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrUnsupportedURL, u.String())
	}
	if c.Path == "" {
		c.Path = "/"
		c.RawPath = ""
	}
	c.Fragment = ""
	c.RawFragment = ""

	return purell.NormalizeURL(&c, canonicalFlags), nil
}

// CanonicalURL resolves child against parent and canonicalizes the result.
func CanonicalURL(parent, child string) (string, error) {
	u, err := ResolveURL(parent, child)
	if err != nil {
		return "", err
	}
	return Canonicalize(u)
}

// Hostname returns the lower-cased host of a canonical URL, without port.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
