package model

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Page is the paginated envelope returned by list endpoints. Next and
// Previous are opaque, server supplied references to neighbouring pages.
type Page[T any] struct {
	Results  []T    `json:"results"`
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// DecodePage accepts the canonical envelope and, for older endpoints, a bare
// JSON array which becomes a single page holding every item.
func DecodePage[T any](body []byte) (*Page[T], error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON list response")
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return &Page[T]{Results: items, Count: len(items)}, nil
	}

	var items []T
	if raw := root.Get("results"); raw.Exists() && raw.IsArray() {
		if err := json.Unmarshal([]byte(raw.Raw), &items); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
	}
	page := &Page[T]{
		Results:  items,
		Count:    int(root.Get("count").Int()),
		Next:     root.Get("next").String(),
		Previous: root.Get("previous").String(),
	}
	if !root.Get("count").Exists() {
		page.Count = len(items)
	}
	return page, nil
}
