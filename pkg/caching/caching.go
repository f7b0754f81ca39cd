// Package caching keeps fetched pages on disk for a limited time so that
// repeated scrapes of the same URL do not hit the site again.
package caching

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/brew-crawler/pkg/fetcher"
)

// PageCache is a file-based page cache with a TTL.
type PageCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// New creates the cache directory if it doesn't exist.
func New(dir string, ttl time.Duration) (*PageCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &PageCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *PageCache) path(url string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", sha256.Sum256([]byte(url))))
}

// Get returns the cached page for url when present and younger than the TTL.
func (c *PageCache) Get(url string) (*fetcher.Response, bool) {
	p := c.path(url)

	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.URL != url {
		return nil, false
	}
	return &fetcher.Response{URL: e.URL, ContentType: e.ContentType, Body: e.Body}, true
}

// Put stores resp under url, replacing any earlier copy.
func (c *PageCache) Put(url string, resp *fetcher.Response) error {
	data, err := json.Marshal(entry{URL: url, ContentType: resp.ContentType, Body: resp.Body})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(url), data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
