package bitbucket

import (
	"context"
	"net/url"
	"strconv"
)

const (
	// DefaultPagelen is the page size used when the caller gives none.
	DefaultPagelen = 25
	// MaxPagelen is the hard cap applied regardless of caller request.
	MaxPagelen = 100
	// DefaultMaxPages bounds multi-page walks against the live API.
	DefaultMaxPages = 10
)

// Paginated is the Bitbucket list envelope. Next being non-empty is the sole
// signal that more results exist.
type Paginated[T any] struct {
	Size     int    `json:"size,omitempty"`
	Page     int    `json:"page,omitempty"`
	Pagelen  int    `json:"pagelen,omitempty"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Values   []T    `json:"values"`
}

// PageOptions selects a page and page size for list calls.
type PageOptions struct {
	// Page is included in the query only when positive; the server applies
	// its own default (1) otherwise.
	Page int
	// Pagelen defaults to DefaultPagelen and is clamped to MaxPagelen.
	Pagelen int
	// MaxPages caps page walks; zero means DefaultMaxPages.
	MaxPages int
}

// Query renders the options as request query parameters.
func (o PageOptions) Query() url.Values {
	q := url.Values{}
	q.Set("pagelen", strconv.Itoa(o.pagelen()))
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return q
}

func (o PageOptions) pagelen() int {
	pl := o.Pagelen
	if pl <= 0 {
		pl = DefaultPagelen
	}
	if pl > MaxPagelen {
		pl = MaxPagelen
	}
	return pl
}

func (o PageOptions) maxPages() int {
	if o.MaxPages > 0 {
		return o.MaxPages
	}
	return DefaultMaxPages
}

// HasMorePages reports whether the envelope points at a further page.
func HasMorePages[T any](p *Paginated[T]) bool {
	return p != nil && p.Next != ""
}

// PageFromURL parses the page query parameter from a server-returned
// pagination link. Malformed input degrades to "no known page number"
// rather than an error.
func PageFromURL(raw string) (int, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, false
	}
	v := u.Query().Get("page")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ForEachPage walks a paginated result set. fetch is called with the query
// for each page in turn; fn receives each page's values. The walk stops when
// the envelope has no next link, when fn returns an error, or after
// opts.MaxPages pages.
func ForEachPage[T any](ctx context.Context, opts PageOptions, fetch func(ctx context.Context, q url.Values) (*Paginated[T], error), fn func(values []T) error) error {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	pagelen := opts.pagelen()

	for fetched := 0; fetched < opts.maxPages(); fetched++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("pagelen", strconv.Itoa(pagelen))

		resp, err := fetch(ctx, q)
		if err != nil {
			return err
		}
		if err := fn(resp.Values); err != nil {
			return err
		}
		if !HasMorePages(resp) {
			return nil
		}
		if next, ok := PageFromURL(resp.Next); ok {
			page = next
		} else {
			page++
		}
	}
	return nil
}
