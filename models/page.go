package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Well-known keys written by the recipe scrapers.
const (
	TitleKey       = "title"
	StyleKey       = "style"
	YieldKey       = "yield size"
	GrainsKey      = "grains"
	HopsKey        = "hops"
	YeastsKey      = "yeasts"
	ScraperKey     = "scraper"
	FermentableKey = "Fermentable"
	VarietyKey     = "Variety"
	AmountKey      = "Amount"
	TimeKey        = "Time"
)

// Keys reserved by the record envelope. Extracted fields using them are dropped.
const (
	urlKey       = "url"
	lastVisitKey = "last_visit_time"
	rawKey       = "raw_content"
)

// Fields is the open mapping a scraper extracts from a page.
type Fields map[string]any

// String returns the value of key when it holds a string.
func (f Fields) String(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// List returns the value of key as a slice, or nil when it is not one.
func (f Fields) List(key string) []any {
	switch v := f[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	case []map[string]string:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	return nil
}

// PageRecord is the persisted state of one crawled URL.
type PageRecord struct {
	URL           string
	LastVisitTime time.Time
	RawContent    []byte
	Fields        Fields
}

// MarshalJSON flattens the extracted fields into the top-level document.
func (p *PageRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Fields)+3)
	for k, v := range p.Fields {
		doc[k] = v
	}
	doc[urlKey] = p.URL
	doc[lastVisitKey] = p.LastVisitTime.UTC()
	if len(p.RawContent) > 0 {
		doc[rawKey] = string(p.RawContent)
	} else {
		delete(doc, rawKey)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON splits a flat document back into envelope and fields.
func (p *PageRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	p.URL, _ = doc[urlKey].(string)
	if ts, ok := doc[lastVisitKey].(string); ok && ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", lastVisitKey, err)
		}
		p.LastVisitTime = t
	}
	if raw, ok := doc[rawKey].(string); ok {
		p.RawContent = []byte(raw)
	}

	delete(doc, urlKey)
	delete(doc, lastVisitKey)
	delete(doc, rawKey)
	p.Fields = doc
	return nil
}

// FieldsJSON encodes only the extracted fields, for adapters that keep the
// envelope in dedicated columns.
func (p *PageRecord) FieldsJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		switch k {
		case urlKey, lastVisitKey, rawKey:
			continue
		}
		doc[k] = v
	}
	return json.Marshal(doc)
}

// DecodeFields is the inverse of FieldsJSON.
func DecodeFields(data []byte) (Fields, error) {
	if len(data) == 0 {
		return Fields{}, nil
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return f, nil
}
