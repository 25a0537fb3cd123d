// internal/app/system/apiclient/list.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/scanmenu/admindesk/internal/app/system/paging"
)

// listEnvelope accepts the shapes the API uses for list responses:
//
//	{"data": [...], "pagination": {...}}
//	{"data": {"items": [...], "pagination": {...}}}
//	{"items": [...], "pagination": {...}}
type listEnvelope[T any] struct {
	Success    *bool              `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Items      []T                `json:"items"`
	Pagination *paging.Pagination `json:"pagination"`
}

func (e *listEnvelope[T]) accepted() error {
	if e.Success != nil && !*e.Success {
		return &MutationError{Message: e.Message}
	}
	return nil
}

// unwrap returns the items and raw pagination block of the envelope.
func (e *listEnvelope[T]) unwrap() ([]T, *paging.Pagination, error) {
	items, pag := e.Items, e.Pagination
	data := bytes.TrimSpace(e.Data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
	case data[0] == '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, nil, err
		}
	case data[0] == '{':
		var inner struct {
			Items      []T                `json:"items"`
			Pagination *paging.Pagination `json:"pagination"`
		}
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, nil, err
		}
		items = inner.Items
		if inner.Pagination != nil {
			pag = inner.Pagination
		}
	}
	return items, pag, nil
}

// List fetches one page of a list endpoint.
//
// The returned pagination is normalised: a missing block becomes
// {total:0,totalPages:0} and the page is clamped into range.
func List[T any](ctx context.Context, c *Client, resource, path string, q paging.Query) (paging.Page[T], error) {
	var env listEnvelope[T]
	err := c.do(ctx, request{
		resource: resource,
		method:   http.MethodGet,
		path:     path,
		query:    q.Values(),
	}, &env)
	if err != nil {
		return paging.Page[T]{}, err
	}
	items, pag, err := env.unwrap()
	if err != nil {
		return paging.Page[T]{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return paging.Page[T]{
		Items:      items,
		Pagination: paging.Normalize(pag, q),
	}, nil
}

// Get fetches a single record from path.
func Get[T any](ctx context.Context, c *Client, resource, path string) (T, error) {
	var env struct {
		Data T `json:"data"`
	}
	err := c.do(ctx, request{resource: resource, method: http.MethodGet, path: path}, &env)
	return env.Data, err
}

// getValues is Get with a query string.
func getValues[T any](ctx context.Context, c *Client, resource, path string, q url.Values) (T, error) {
	var env struct {
		Data T `json:"data"`
	}
	err := c.do(ctx, request{resource: resource, method: http.MethodGet, path: path, query: q}, &env)
	return env.Data, err
}
