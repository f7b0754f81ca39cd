package caching

import (
	"testing"
	"time"

	"github.com/dtnitsch/brew-crawler/pkg/fetcher"
)

func TestPageCache(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	url := "https://beerrecipes.org/Recipe/1234"

	if _, ok := c.Get(url); ok {
		t.Fatal("Get() on empty cache = hit, want miss")
	}

	want := &fetcher.Response{ContentType: "text/html; charset=utf-8", Body: []byte("<html>ok</html>")}
	if err := c.Put(url, want); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok := c.Get(url)
	if !ok {
		t.Fatal("Get() after Put() = miss, want hit")
	}
	if string(got.Body) != string(want.Body) {
		t.Errorf("Body = %q, want %q", got.Body, want.Body)
	}
	if got.ContentType != want.ContentType {
		t.Errorf("ContentType = %q, want %q", got.ContentType, want.ContentType)
	}

	if _, ok := c.Get(url + "?page=2"); ok {
		t.Error("Get() for a different URL = hit, want miss")
	}
}

func TestPageCache_Expired(t *testing.T) {
	c, err := New(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	url := "https://www.brewersfriend.com/homebrew/recipe/view/1"
	if err := c.Put(url, &fetcher.Response{Body: []byte("x")}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, ok := c.Get(url); ok {
		t.Error("Get() after TTL = hit, want miss")
	}
}
