package apiclient

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// PageParams paginates and sorts list endpoints. Zero values are omitted.
type PageParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Values renders the parameters as a query string, adding to q when it is non-nil.
func (p PageParams) Values(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.SortOrder != "" {
		q.Set("sort_order", p.SortOrder)
	}
	return q
}

// Page is a list response. Paginated endpoints answer with an envelope
// ({"items": [...], "total": n, ...}); the rest answer with a bare array,
// which decodes as a single page holding every item.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Items: items, Total: len(items), Page: 1, Limit: len(items), Pages: 1}
		return nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page[T](env)
	if p.Total == 0 {
		p.Total = len(p.Items)
	}
	return nil
}

// pageEnvelope has Page's layout without its UnmarshalJSON method.
type pageEnvelope[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}
