// Package paging turns list metadata into the links a list view renders.
package paging

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"jobportal/internal/apiclient"
)

const maxSearchRunes = 100

// Normalize clamps a requested page and page size.
func Normalize(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Search cleans a free-text query: trims, collapses whitespace and caps its length.
func Search(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if utf8.RuneCountInString(q) > maxSearchRunes {
		q = string([]rune(q)[:maxSearchRunes])
	}
	return q
}

// Link is one entry in the page strip; Gap entries render as an ellipsis.
type Link struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

type Pager struct {
	Page       int
	TotalPages int
	Total      int
	From       int
	To         int
	Prev       string
	Next       string
	Links      []Link
}

// Show is false when everything fits on one page.
func (p Pager) Show() bool { return p.TotalPages > 1 }

const window = 7

// New builds a pager for meta. Links keep every parameter of query except page.
func New(meta apiclient.Meta, path string, query url.Values) Pager {
	page := meta.Page
	if page < 1 {
		page = 1
	}
	total := meta.TotalPages
	if total < 1 {
		total = 1
	}
	if page > total {
		page = total
	}

	p := Pager{Page: page, TotalPages: total, Total: meta.Total}
	if meta.Total > 0 && meta.Limit > 0 {
		p.From = (page-1)*meta.Limit + 1
		p.To = page * meta.Limit
		if p.To > meta.Total {
			p.To = meta.Total
		}
	}

	link := func(n int) string {
		q := url.Values{}
		for k, vs := range query {
			if k == "page" {
				continue
			}
			q[k] = append([]string(nil), vs...)
		}
		if n > 1 {
			q.Set("page", strconv.Itoa(n))
		}
		if len(q) == 0 {
			return path
		}
		return path + "?" + q.Encode()
	}

	if page > 1 {
		p.Prev = link(page - 1)
	}
	if page < total {
		p.Next = link(page + 1)
	}

	for _, n := range pageNumbers(page, total) {
		if n == 0 {
			p.Links = append(p.Links, Link{Gap: true})
			continue
		}
		p.Links = append(p.Links, Link{Number: n, URL: link(n), Current: n == page})
	}
	return p
}

// pageNumbers returns at most window numbers; 0 marks a gap.
// The first and last pages are always present.
func pageNumbers(page, total int) []int {
	if total <= window {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	// window minus first, last and two possible gaps
	inner := window - 4
	start := page - inner/2
	end := start + inner - 1
	if start <= 3 {
		start, end = 2, 2+inner
	}
	if end >= total-2 {
		end = total - 1
		start = end - inner
	}

	out := []int{1}
	if start > 2 {
		out = append(out, 0)
	}
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	if end < total-1 {
		out = append(out, 0)
	}
	return append(out, total)
}
