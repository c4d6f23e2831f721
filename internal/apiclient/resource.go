package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// ListQuery is the common list filter: page cursor, page size, search text and extra filters.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if q.Filters[k] != "" {
			v.Set(k, q.Filters[k])
		}
	}
	return v
}

// Resource is a REST collection at Path with the usual list/get/create/update/delete calls.
type Resource[T any] struct {
	c    *Client
	Path string
}

func NewResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{c: c, Path: path}
}

func (r Resource[T]) item(id int64) string {
	return r.Path + "/" + strconv.FormatInt(id, 10)
}

func (r Resource[T]) List(ctx context.Context, q ListQuery) (Page[T], error) {
	var items []T
	meta, err := r.c.Do(ctx, Request{Method: http.MethodGet, Path: r.Path, Query: q.Values()}, &items)
	if err != nil {
		return Page[T]{}, err
	}
	if meta.Limit == 0 {
		meta.Limit = q.Limit
	}
	if meta.Total == 0 && meta.TotalPages == 0 {
		meta.Total = len(items)
	}
	if meta.Page == 0 {
		meta.Page = q.Page
	}
	return Page[T]{Items: items, Meta: meta.normalized()}, nil
}

func (r Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	_, err := r.c.Do(ctx, Request{Method: http.MethodGet, Path: r.item(id)}, &out)
	return out, err
}

func (r Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	_, err := r.c.Do(ctx, Request{Method: http.MethodPost, Path: r.Path, Body: in}, &out)
	return out, err
}

func (r Resource[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var out T
	_, err := r.c.Do(ctx, Request{Method: http.MethodPut, Path: r.item(id), Body: in}, &out)
	return out, err
}

func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	_, err := r.c.Do(ctx, Request{Method: http.MethodDelete, Path: r.item(id)}, nil)
	return err
}
