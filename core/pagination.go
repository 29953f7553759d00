package core

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Page is the uniform list envelope produced by a Pagination adapter.
type Page struct {
	Next     string `mapstructure:"next"`
	Previous string `mapstructure:"previous"`
	Count    int    `mapstructure:"count"`
	Results  []any  `mapstructure:"results"`
}

// Map returns the page in its wire shape.
func (p Page) Map() map[string]any {
	results := p.Results
	if results == nil {
		results = []any{}
	}
	return map[string]any{
		"next":     p.Next,
		"previous": p.Previous,
		"count":    p.Count,
		"results":  results,
	}
}

// KeysPagination reads next/previous/count/results straight off a JSON
// object. Key names can be remapped for APIs that use other conventions.
type KeysPagination struct {
	NextKey     string
	PreviousKey string
	CountKey    string
	ResultsKey  string
}

func DefaultPagination() KeysPagination {
	return KeysPagination{
		NextKey:     "next",
		PreviousKey: "previous",
		CountKey:    "count",
		ResultsKey:  "results",
	}
}

func (p KeysPagination) Paginate(_ context.Context, data any) (Page, bool) {
	raw, ok := data.(map[string]any)
	if !ok {
		return Page{Results: []any{}}, false
	}
	source := map[string]any{}
	for target, key := range map[string]string{
		"next":     keyOrDefault(p.NextKey, "next"),
		"previous": keyOrDefault(p.PreviousKey, "previous"),
		"count":    keyOrDefault(p.CountKey, "count"),
		"results":  keyOrDefault(p.ResultsKey, "results"),
	} {
		if value, exists := raw[key]; exists && value != nil {
			source[target] = value
		}
	}

	page := Page{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &page,
	})
	if err != nil {
		return Page{Results: []any{}}, false
	}
	if err := decoder.Decode(source); err != nil {
		return Page{Results: []any{}}, false
	}
	if page.Results == nil {
		page.Results = []any{}
	}
	return page, true
}

// NoPagination leaves list data untouched, for APIs that return bare arrays.
type NoPagination struct{}

func (NoPagination) Paginate(context.Context, any) (Page, bool) {
	return Page{}, false
}

func keyOrDefault(key string, fallback string) string {
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		return trimmed
	}
	return fallback
}

var (
	_ Pagination = KeysPagination{}
	_ Pagination = NoPagination{}
)
