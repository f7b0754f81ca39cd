package common

import (
	"errors"
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   string
	}{
		{
			name:  "fragment removed and empty path",
			child: "HTTP://Example.COM#top",
			want:  "http://example.com/",
		},
		{
			name:  "default port and dot segments",
			child: "http://example.com:80/a/../b",
			want:  "http://example.com/b",
		},
		{
			name:  "query kept and sorted",
			child: "https://example.com/search?b=2&a=1",
			want:  "https://example.com/search?a=1&b=2",
		},
		{
			name:   "relative link resolved against parent",
			parent: "https://example.com/recipes/list",
			child:  "view/42#reviews",
			want:   "https://example.com/recipes/view/42",
		},
		{
			name:   "root relative link",
			parent: "https://example.com/recipes/list",
			child:  "/about",
			want:   "https://example.com/about",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.parent, tt.child)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanonicalURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURL_Unsupported(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
	}{
		{name: "mailto", parent: "https://example.com/", child: "mailto:brewer@example.com"},
		{name: "javascript", parent: "https://example.com/", child: "javascript:void(0)"},
		{name: "relative without parent", child: "recipes/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalURL(tt.parent, tt.child)
			if !errors.Is(err, ErrUnsupportedURL) {
				t.Errorf("CanonicalURL() error = %v, want ErrUnsupportedURL", err)
			}
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://example.com  ", "https://example.com"},
		{"[recipe](https://example.com/r/1)", "https://example.com/r/1"},
		{"<https://example.com/>", "https://example.com/"},
		{"https://example.com/x,", "https://example.com/x"},
	}

	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://WWW.BrewersFriend.com:443/x"); got != "www.brewersfriend.com" {
		t.Errorf("Hostname() = %q, want %q", got, "www.brewersfriend.com")
	}
}
