// internal/app/system/paging/paging.go
package paging

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// PageSize is the default number of rows shown in paged admin tables.
const PageSize = 10

// MaxPageSize caps the limit an admin may request for a table.
const MaxPageSize = 100

// Sort directions accepted by the API.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Pagination is the pagination block every list endpoint returns.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Query is the full parameter tuple of one list request.
type Query struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

// Page is one page of a list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Clamp returns page constrained to [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	upper := totalPages
	if upper < 1 {
		upper = 1
	}
	if page < 1 {
		return 1
	}
	if page > upper {
		return upper
	}
	return page
}

// ClampLimit returns a usable page size: non-positive values become
// PageSize and anything above MaxPageSize is capped.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return PageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Normalize fills in a pagination block from a list response.
//
// A nil block (the API omitted pagination) becomes {total:0,totalPages:0}
// on the requested page/limit. A missing totalPages is derived from total
// and limit. The page is clamped into range so readers never see page 0 or
// a page past the end.
func Normalize(p *Pagination, requested Query) Pagination {
	out := Pagination{Page: requested.Page, Limit: requested.Limit}
	if p != nil {
		out = *p
		if out.Limit <= 0 {
			out.Limit = requested.Limit
		}
		if out.Page <= 0 {
			out.Page = requested.Page
		}
	}
	out.Limit = ClampLimit(out.Limit)
	if out.Total < 0 {
		out.Total = 0
	}
	if out.TotalPages <= 0 && out.Total > 0 {
		out.TotalPages = (out.Total + out.Limit - 1) / out.Limit
	}
	out.Page = Clamp(out.Page, out.TotalPages)
	return out
}

// Values renders the query the way the API expects it:
// page, limit, sortBy, sortOrder and every non-empty filter.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	v.Set("limit", strconv.Itoa(ClampLimit(q.Limit)))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		v.Set("sortOrder", NormalizeOrder(q.SortOrder))
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := strings.TrimSpace(q.Filters[k]); val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Clone returns a copy of q that shares no maps with it.
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// NormalizeOrder maps anything other than "asc" to "desc".
func NormalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), Asc) {
		return Asc
	}
	return Desc
}

// Range holds computed display range values for a paginated table.
type Range struct {
	Start    int // 1-based start index (0 if no results)
	End      int // 1-based end index (0 if no results)
	PrevPage int // page for the previous link (equals Page on the first page)
	NextPage int // page for the next link (equals Page on the last page)
	HasPrev  bool
	HasNext  bool
}

// ComputeRange calculates the "showing X–Y of Z" values for a page that
// displays shown rows.
func ComputeRange(p Pagination, shown int) Range {
	page := Clamp(p.Page, p.TotalPages)
	r := Range{PrevPage: page, NextPage: page}
	if page > 1 {
		r.HasPrev = true
		r.PrevPage = page - 1
	}
	if page < p.TotalPages {
		r.HasNext = true
		r.NextPage = page + 1
	}
	if shown == 0 {
		return r
	}
	limit := ClampLimit(p.Limit)
	r.Start = (page-1)*limit + 1
	r.End = r.Start + shown - 1
	return r
}
