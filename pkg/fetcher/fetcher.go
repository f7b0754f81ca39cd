package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is a browser-like agent; several recipe sites reject Go's default.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

const maxBodyBytes = 10 << 20

// ErrUnexpectedStatus is wrapped by Get for any status other than 200.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Response is a successfully fetched page.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: DefaultUserAgent,
	}
}

// WithClient replaces the underlying HTTP client.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// WithUserAgent overrides the User-Agent header.
func (f *Fetcher) WithUserAgent(ua string) *Fetcher {
	f.userAgent = ua
	return f
}

// Get issues a GET for url with the given cookies attached.
func (f *Fetcher) Get(ctx context.Context, url string, cookies []*http.Cookie) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("failed to fetch HTML, %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
