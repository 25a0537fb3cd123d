package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

type result struct {
	page paging.Page[string]
	err  error
}

type call struct {
	q     paging.Query
	reply chan result
}

// stubAPI hands every fetch to the test through calls and blocks until the
// test replies.
type stubAPI struct {
	calls chan call
}

func newStub() *stubAPI { return &stubAPI{calls: make(chan call, 16)} }

func (s *stubAPI) fetch(ctx context.Context, q paging.Query) (paging.Page[string], error) {
	c := call{q: q, reply: make(chan result, 1)}
	s.calls <- c
	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-ctx.Done():
		return paging.Page[string]{}, ctx.Err()
	}
}

func (s *stubAPI) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return call{}
	}
}

func (s *stubAPI) none(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected fetch %+v", c.q)
	case <-time.After(within):
	}
}

func pageOf(page, total, limit int, items ...string) paging.Page[string] {
	return paging.Page[string]{
		Items:      items,
		Pagination: paging.Pagination{Page: page, Limit: limit, Total: total},
	}
}

func waitIdle(t *testing.T, c Fetcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
}

func TestRefresh_AppliesResponse(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	got := api.next(t)
	if got.q.Page != 1 || got.q.Limit != paging.PageSize {
		t.Fatalf("query = %+v, want page 1 limit %d", got.q, paging.PageSize)
	}
	got.reply <- result{page: pageOf(1, 12, 10, "a", "b")}
	waitIdle(t, c)

	st := c.Snapshot()
	if !st.Loaded || st.Loading {
		t.Errorf("loaded=%v loading=%v, want true/false", st.Loaded, st.Loading)
	}
	if len(st.Items) != 2 || st.Pagination.TotalPages != 2 {
		t.Errorf("snapshot = %+v", st)
	}
	if st.Generation != 1 {
		t.Errorf("Generation = %d, want 1", st.Generation)
	}
}

func TestLatestRequestWins(t *testing.T) {
	api := newStub()
	c := New(models.ResourceBusinesses, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	first := api.next(t)
	c.Refresh()
	second := api.next(t)

	second.reply <- result{page: pageOf(1, 1, 10, "new")}
	// Let the newer response land before the older one.
	deadline := time.Now().Add(2 * time.Second)
	for c.Generation() != 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	first.reply <- result{page: pageOf(1, 1, 10, "old")}
	waitIdle(t, c)

	items := c.Items()
	if len(items) != 1 || items[0] != "new" {
		t.Fatalf("items = %v, want [new]", items)
	}
	if c.Generation() != 2 {
		t.Errorf("Generation = %d, want 2", c.Generation())
	}
}

func TestLatestRequestWins_StaleFailureIgnored(t *testing.T) {
	api := newStub()
	var mu sync.Mutex
	var errs int
	c := New(models.ResourceUsers, api.fetch, Options{Hooks: Hooks{
		OnError: func(models.Resource, error) { mu.Lock(); errs++; mu.Unlock() },
	}})
	defer c.Close()

	c.Refresh()
	first := api.next(t)
	c.Refresh()
	second := api.next(t)

	first.reply <- result{err: errors.New("boom")}
	second.reply <- result{page: pageOf(1, 1, 10, "ok")}
	waitIdle(t, c)

	st := c.Snapshot()
	if st.Error != "" {
		t.Errorf("Error = %q, want empty", st.Error)
	}
	mu.Lock()
	defer mu.Unlock()
	if errs != 0 {
		t.Errorf("OnError called %d times for a stale failure", errs)
	}
}

func TestSetFilters_DebouncesIntoOneRequest(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{Debounce: 40 * time.Millisecond})
	defer c.Close()

	// Start on page 3 of 5.
	c.SetPagination(3, 0)
	first := api.next(t)
	first.reply <- result{page: pageOf(3, 50, 10, "x")}
	waitIdle(t, c)
	if c.Snapshot().Pagination.Page != 3 {
		t.Fatalf("page = %d, want 3", c.Snapshot().Pagination.Page)
	}

	c.SetFilters(map[string]string{"search": "john"})
	c.SetFilters(map[string]string{"role": "admin"})

	got := api.next(t)
	if got.q.Page != 1 {
		t.Errorf("page = %d, want 1", got.q.Page)
	}
	if got.q.Filters["search"] != "john" || got.q.Filters["role"] != "admin" {
		t.Errorf("filters = %v, want search=john role=admin", got.q.Filters)
	}
	got.reply <- result{page: pageOf(1, 1, 10, "john")}
	waitIdle(t, c)
	api.none(t, 80*time.Millisecond)
}

func TestSetFilters_EmptyValueRemovesKey(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{Debounce: -1})
	defer c.Close()

	c.SetFilters(map[string]string{"role": "admin"})
	api.next(t).reply <- result{page: pageOf(1, 0, 10)}
	c.SetFilters(map[string]string{"role": " "})
	got := api.next(t)
	if _, ok := got.q.Filters["role"]; ok {
		t.Errorf("filters = %v, want role removed", got.q.Filters)
	}
	got.reply <- result{page: pageOf(1, 0, 10)}
	waitIdle(t, c)
}

func TestSetFilters_AllowedKeys(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{Debounce: -1, AllowedFilters: []string{"role"}})
	defer c.Close()

	c.SetFilters(map[string]string{"role": "admin", "password": "x"})
	got := api.next(t)
	if len(got.q.Filters) != 1 || got.q.Filters["role"] != "admin" {
		t.Errorf("filters = %v, want only role", got.q.Filters)
	}
	got.reply <- result{page: pageOf(1, 0, 10)}
	waitIdle(t, c)
}

func TestRefresh_FoldsPendingDebounce(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{Debounce: time.Hour})
	defer c.Close()

	c.SetFilters(map[string]string{"search": "ann"})
	c.Refresh()
	got := api.next(t)
	if got.q.Filters["search"] != "ann" {
		t.Errorf("filters = %v, want search=ann", got.q.Filters)
	}
	got.reply <- result{page: pageOf(1, 0, 10)}
	waitIdle(t, c)
}

func TestSetPagination_Clamps(t *testing.T) {
	api := newStub()
	c := New(models.ResourcePayments, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 30, 10, "a")}
	waitIdle(t, c)

	tests := []struct {
		name string
		page int
		want int
	}{
		{"beyond last", 9, 3},
		{"negative", -4, 1},
		{"in range", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.SetPagination(tt.page, 0)
			got := api.next(t)
			if got.q.Page != tt.want {
				t.Errorf("page = %d, want %d", got.q.Page, tt.want)
			}
			got.reply <- result{page: pageOf(got.q.Page, 30, 10, "a")}
			waitIdle(t, c)
		})
	}
}

func TestSetPagination_LimitChangeRecomputesPages(t *testing.T) {
	api := newStub()
	c := New(models.ResourcePayments, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 30, 10, "a")}
	waitIdle(t, c)

	c.SetPagination(3, 25)
	got := api.next(t)
	if got.q.Limit != 25 || got.q.Page != 2 {
		t.Errorf("query = page %d limit %d, want page 2 limit 25", got.q.Page, got.q.Limit)
	}
	got.reply <- result{page: pageOf(2, 30, 25, "z")}
	waitIdle(t, c)
}

func TestResponsePastLastPage_FollowUp(t *testing.T) {
	api := newStub()
	c := New(models.ResourceTickets, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 50, 10, "a")}
	waitIdle(t, c)

	c.SetPagination(5, 0)
	got := api.next(t)
	// Rows were deleted meanwhile; only 2 pages remain.
	got.reply <- result{page: pageOf(5, 20, 10)}

	follow := api.next(t)
	if follow.q.Page != 2 {
		t.Errorf("follow-up page = %d, want 2", follow.q.Page)
	}
	follow.reply <- result{page: pageOf(2, 20, 10, "k")}
	waitIdle(t, c)

	st := c.Snapshot()
	if st.Pagination.Page != 2 || len(st.Items) != 1 {
		t.Errorf("snapshot = %+v, want page 2 with one item", st)
	}
	api.none(t, 30*time.Millisecond)
}

func TestItemsTruncatedToLimit(t *testing.T) {
	api := newStub()
	c := New(models.ResourceFAQs, api.fetch, Options{Limit: 2})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 3, 2, "a", "b", "c")}
	waitIdle(t, c)

	if got := c.Items(); len(got) != 2 {
		t.Errorf("items = %v, want 2", got)
	}
}

func TestFailure_KeepsPreviousState(t *testing.T) {
	api := newStub()
	var gotErr error
	var mu sync.Mutex
	c := New(models.ResourceUsers, api.fetch, Options{Hooks: Hooks{
		OnError: func(_ models.Resource, err error) { mu.Lock(); gotErr = err; mu.Unlock() },
	}})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 2, 10, "a", "b")}
	waitIdle(t, c)

	c.Refresh()
	api.next(t).reply <- result{err: &apiclient.StatusError{Code: 500, Message: "database down"}}
	waitIdle(t, c)

	st := c.Snapshot()
	if len(st.Items) != 2 || st.Pagination.Total != 2 {
		t.Errorf("state changed on failure: %+v", st)
	}
	if st.Loading {
		t.Error("Loading = true after failure")
	}
	if st.Error != "database down" {
		t.Errorf("Error = %q, want %q", st.Error, "database down")
	}
	mu.Lock()
	defer mu.Unlock()
	if gotErr == nil {
		t.Error("OnError not called")
	}
}

func TestFailedPageChange_KeepsShownPagination(t *testing.T) {
	api := newStub()
	c := New(models.ResourceBusinesses, api.fetch, Options{Limit: 20})
	defer c.Close()

	rows := make([]string, 20)
	for i := range rows {
		rows[i] = fmt.Sprintf("b%d", i)
	}
	c.Refresh()
	api.next(t).reply <- result{page: pageOf(1, 100, 20, rows...)}
	waitIdle(t, c)

	c.SetPagination(3, 5)
	got := api.next(t)
	if got.q.Page != 3 || got.q.Limit != 5 {
		t.Fatalf("query = page %d limit %d, want page 3 limit 5", got.q.Page, got.q.Limit)
	}
	if st := c.Snapshot(); st.Pagination.Page != 1 || st.Pagination.Limit != 20 {
		t.Errorf("pagination changed before the response: %+v", st.Pagination)
	}
	got.reply <- result{err: &apiclient.StatusError{Code: 500, Message: "boom"}}
	waitIdle(t, c)

	st := c.Snapshot()
	if len(st.Items) > st.Pagination.Limit {
		t.Errorf("items = %d exceed limit %d", len(st.Items), st.Pagination.Limit)
	}
	want := paging.Pagination{Page: 1, Limit: 20, Total: 100, TotalPages: 5}
	if st.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", st.Pagination, want)
	}
	if st.Range.Start != 1 || st.Range.End != 20 {
		t.Errorf("range = %+v, want 1-20", st.Range)
	}

	// A retry asks for what the admin requested and applies it on success.
	c.Refresh()
	retry := api.next(t)
	if retry.q.Page != 3 || retry.q.Limit != 5 {
		t.Errorf("retry = page %d limit %d, want page 3 limit 5", retry.q.Page, retry.q.Limit)
	}
	retry.reply <- result{page: pageOf(3, 100, 5, "x1", "x2", "x3", "x4", "x5")}
	waitIdle(t, c)
	if st := c.Snapshot(); st.Pagination.Page != 3 || st.Pagination.Limit != 5 || len(st.Items) != 5 {
		t.Errorf("after retry: pagination %+v items %d", st.Pagination, len(st.Items))
	}
}

func TestFailedFilterChange_KeepsShownPage(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{Debounce: -1})
	defer c.Close()

	c.SetPagination(2, 0)
	api.next(t).reply <- result{page: pageOf(2, 30, 10, "a")}
	waitIdle(t, c)

	c.SetFilters(map[string]string{"role": "admin"})
	got := api.next(t)
	if got.q.Page != 1 {
		t.Errorf("page = %d, want 1", got.q.Page)
	}
	got.reply <- result{err: errors.New("timeout")}
	waitIdle(t, c)

	if st := c.Snapshot(); st.Pagination.Page != 2 || len(st.Items) != 1 {
		t.Errorf("snapshot = %+v, want page 2 unchanged", st)
	}
}

func TestUnauthorized_CallsSessionHook(t *testing.T) {
	api := newStub()
	done := make(chan models.Resource, 1)
	var toasts int
	c := New(models.ResourceUsers, api.fetch, Options{Hooks: Hooks{
		OnUnauthorized: func(r models.Resource, _ error) { done <- r },
		OnError:        func(models.Resource, error) { toasts++ },
	}})
	defer c.Close()

	c.Refresh()
	api.next(t).reply <- result{err: fmt.Errorf("list: %w", apiclient.ErrUnauthorized)}

	select {
	case r := <-done:
		if r != models.ResourceUsers {
			t.Errorf("resource = %q", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnUnauthorized not called")
	}
	waitIdle(t, c)
	if toasts != 0 {
		t.Errorf("OnError called %d times for a 401", toasts)
	}
}

func TestOverridesWin(t *testing.T) {
	api := newStub()
	c := New(models.ResourceBusinesses, api.fetch, Options{Debounce: time.Hour})
	defer c.Close()

	c.SetFilters(map[string]string{"verificationStatus": "approved", "search": "cafe"})
	c.SetOverrides(map[string]string{"verificationStatus": "pending"})
	c.Refresh()

	got := api.next(t)
	if got.q.Filters["verificationStatus"] != "pending" || got.q.Filters["search"] != "cafe" {
		t.Errorf("filters = %v", got.q.Filters)
	}
	got.reply <- result{page: pageOf(1, 0, 10)}
	waitIdle(t, c)

	if ov := c.Snapshot().Overrides; ov["verificationStatus"] != "pending" {
		t.Errorf("Overrides = %v", ov)
	}
}

func TestClose_DropsLateResponse(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{})

	c.Refresh()
	got := api.next(t)
	c.Close()
	got.reply <- result{page: pageOf(1, 1, 10, "late")}
	waitIdle(t, c)

	if items := c.Items(); len(items) != 0 {
		t.Errorf("items = %v, want none after Close", items)
	}

	c.Refresh()
	api.none(t, 30*time.Millisecond)
}

func TestWaitIdle_ContextDone(t *testing.T) {
	api := newStub()
	c := New(models.ResourceUsers, api.fetch, Options{})
	defer c.Close()

	c.Refresh()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.WaitIdle(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitIdle() = %v, want DeadlineExceeded", err)
	}
	api.next(t).reply <- result{page: pageOf(1, 0, 10)}
}
