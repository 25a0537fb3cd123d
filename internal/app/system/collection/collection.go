// Package collection holds the client-side state of one paginated,
// filterable API resource.
//
// A Collection owns its items, pagination, filters and sort, and is the only
// writer of that state. Filter and sort changes reset the page to 1 and are
// debounced; page changes and explicit refreshes fetch immediately. Every
// request is stamped with a generation number and a response is applied only
// if no newer request for the same collection was issued in the meantime, so
// an out-of-order response can never overwrite newer state.
package collection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/metrics"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"github.com/scanmenu/admindesk/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last filter change before
// the refetch is issued.
const DefaultDebounce = 300 * time.Millisecond

// FetchFunc loads one page of a resource.
type FetchFunc[T any] func(ctx context.Context, q paging.Query) (paging.Page[T], error)

// Hooks are called after a response has been applied or rejected. They run
// outside the collection's lock.
type Hooks struct {
	OnLoaded       func(r models.Resource)
	OnError        func(r models.Resource, err error)
	OnUnauthorized func(r models.Resource, err error)
}

// Options configures a Collection. Zero values select defaults.
type Options struct {
	Debounce       time.Duration // <0 disables debouncing
	Timeout        time.Duration // per request; defaults to timeouts.Medium()
	Limit          int
	SortBy         string
	SortOrder      string
	AllowedFilters []string // nil allows any key
	Logger         *zap.Logger
	Hooks          Hooks
}

// Sort is the active sort field and direction.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// State is a point-in-time copy of a collection.
type State[T any] struct {
	Resource   models.Resource   `json:"resource"`
	Items      []T               `json:"items"`
	Loading    bool              `json:"loading"`
	Loaded     bool              `json:"loaded"`
	Pagination paging.Pagination `json:"pagination"`
	Range      paging.Range      `json:"range"`
	Filters    map[string]string `json:"filters"`
	Overrides  map[string]string `json:"overrides,omitempty"`
	Sort       Sort              `json:"sort"`
	Error      string            `json:"error,omitempty"`
	Generation uint64            `json:"generation"`
}

// Fetcher is the type-erased view of a Collection used by the console and
// the tab machine.
type Fetcher interface {
	Resource() models.Resource
	SetFilters(partial map[string]string)
	SetSort(field, direction string)
	SetPagination(page, limit int)
	SetOverrides(overrides map[string]string)
	Refresh()
	WaitIdle(ctx context.Context) error
	Generation() uint64
	View() any
	Close()
}

// Collection is the state container of one resource.
type Collection[T any] struct {
	resource models.Resource
	fetch    FetchFunc[T]
	opts     Options
	log      *zap.Logger
	allowed  map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	items     []T
	pag       paging.Pagination // pagination of the items shown
	reqPage   int               // page the next request asks for
	reqLimit  int               // limit the next request asks for
	filters   map[string]string
	overrides map[string]string
	sort      Sort
	loading   bool
	loaded    bool
	lastErr   error

	issued  uint64 // generation of the most recently issued request
	applied uint64 // generation whose response is currently shown

	timer       *time.Timer
	debounceSeq uint64
	pending     bool
	inflight    int

	idle       chan struct{}
	idleClosed bool
	closed     bool
}

var _ Fetcher = (*Collection[struct{}])(nil)

// New creates an empty collection. Nothing is fetched until Refresh,
// SetPagination or a filter change.
func New[T any](resource models.Resource, fetch FetchFunc[T], opts Options) *Collection[T] {
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = timeouts.Medium()
	}
	opts.Limit = paging.ClampLimit(opts.Limit)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var allowed map[string]struct{}
	if opts.AllowedFilters != nil {
		allowed = make(map[string]struct{}, len(opts.AllowedFilters))
		for _, k := range opts.AllowedFilters {
			allowed[k] = struct{}{}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	return &Collection[T]{
		resource:   resource,
		fetch:      fetch,
		opts:       opts,
		log:        log.With(zap.String("resource", string(resource))),
		allowed:    allowed,
		ctx:        ctx,
		cancel:     cancel,
		items:      []T{},
		pag:        paging.Pagination{Page: 1, Limit: opts.Limit},
		reqPage:    1,
		reqLimit:   opts.Limit,
		filters:    map[string]string{},
		overrides:  map[string]string{},
		sort:       Sort{Field: opts.SortBy, Direction: paging.NormalizeOrder(opts.SortOrder)},
		idle:       idle,
		idleClosed: true,
	}
}

// Resource returns the resource this collection holds.
func (c *Collection[T]) Resource() models.Resource { return c.resource }

// SetFilters merges partial into the user filters. An empty value removes
// the key. The page is reset to 1 and a debounced refetch is scheduled.
func (c *Collection[T]) SetFilters(partial map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for k, v := range partial {
		k = strings.TrimSpace(k)
		if k == "" || !c.allowedLocked(k) {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			delete(c.filters, k)
			continue
		}
		c.filters[k] = v
	}
	c.reqPage = 1
	c.scheduleLocked()
}

// SetSort changes the sort. It is treated like a filter change.
func (c *Collection[T]) SetSort(field, direction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sort = Sort{Field: strings.TrimSpace(field), Direction: paging.NormalizeOrder(direction)}
	c.reqPage = 1
	c.scheduleLocked()
}

// SetPagination moves to page and/or changes the page size, then fetches
// immediately. Zero arguments keep the current value. The page is clamped
// to the last known page count. The shown pagination only changes when the
// response arrives.
func (c *Collection[T]) SetPagination(page, limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if limit > 0 {
		c.reqLimit = paging.ClampLimit(limit)
	}
	if page == 0 {
		page = c.reqPage
	}

	var totalPages int
	switch {
	case !c.loaded:
		// Nothing is known about the size yet; let the response clamp.
		totalPages = max(page, 1)
	case c.reqLimit == c.pag.Limit:
		totalPages = c.pag.TotalPages
	case c.pag.Total > 0:
		totalPages = (c.pag.Total + c.reqLimit - 1) / c.reqLimit
	}
	c.reqPage = paging.Clamp(page, totalPages)
	c.stopTimerLocked()
	c.issueLocked()
}

// SetOverrides replaces the tab-scoped hidden filters. They take precedence
// over user filters of the same key. Changing them resets the page to 1;
// the caller decides when to Refresh.
func (c *Collection[T]) SetOverrides(overrides map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sameMap(c.overrides, overrides) {
		return
	}
	c.overrides = make(map[string]string, len(overrides))
	for k, v := range overrides {
		c.overrides[k] = v
	}
	c.reqPage = 1
}

// Refresh fetches immediately with the current state. A pending debounced
// fetch is folded into this one.
func (c *Collection[T]) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.issueLocked()
}

// WaitIdle blocks until no debounce timer is armed and no request is in
// flight, or ctx ends.
func (c *Collection[T]) WaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		ch, busy := c.idle, c.busyLocked()
		c.mu.Unlock()
		if !busy {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Generation returns the generation of the response currently shown.
// It changes every time new items are applied.
func (c *Collection[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns a copy of the whole state.
func (c *Collection[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, len(c.items))
	copy(items, c.items)
	overrides := make(map[string]string, len(c.overrides))
	for k, v := range c.overrides {
		overrides[k] = v
	}
	st := State[T]{
		Resource:   c.resource,
		Items:      items,
		Loading:    c.loading,
		Loaded:     c.loaded,
		Pagination: c.pag,
		Range:      paging.ComputeRange(c.pag, len(items)),
		Filters:    c.effectiveFiltersLocked(),
		Overrides:  overrides,
		Sort:       c.sort,
		Generation: c.applied,
	}
	if c.lastErr != nil {
		st.Error = apiclient.Reason(c.lastErr)
	}
	return st
}

// View returns Snapshot as an untyped value for JSON view models.
func (c *Collection[T]) View() any { return c.Snapshot() }

// Close stops the debounce timer and cancels in-flight requests. Responses
// that arrive afterwards are discarded.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.updateIdleLocked()
	c.mu.Unlock()
	c.cancel()
}

/*─────────────────────────────────────────────────────────────────────────────*
| internals (c.mu held unless noted)                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Collection[T]) allowedLocked(key string) bool {
	if c.allowed == nil {
		return true
	}
	_, ok := c.allowed[key]
	return ok
}

func (c *Collection[T]) scheduleLocked() {
	if c.opts.Debounce < 0 {
		c.stopTimerLocked()
		c.issueLocked()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.debounceSeq++
	seq := c.debounceSeq
	c.pending = true
	c.updateIdleLocked()
	c.timer = time.AfterFunc(c.opts.Debounce, func() { c.fireDebounce(seq) })
}

// fireDebounce runs on the timer goroutine; it takes the lock itself.
func (c *Collection[T]) fireDebounce(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.debounceSeq || !c.pending {
		return
	}
	c.pending = false
	c.timer = nil
	c.issueLocked()
}

func (c *Collection[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.debounceSeq++
	c.pending = false
}

func (c *Collection[T]) issueLocked() {
	c.issued++
	gen := c.issued
	q := c.queryLocked()
	c.loading = true
	c.inflight++
	c.updateIdleLocked()
	c.log.Debug("fetch issued",
		zap.Uint64("generation", gen),
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit))
	go c.run(gen, q)
}

func (c *Collection[T]) queryLocked() paging.Query {
	return paging.Query{
		Page:      max(c.reqPage, 1),
		Limit:     paging.ClampLimit(c.reqLimit),
		SortBy:    c.sort.Field,
		SortOrder: c.sort.Direction,
		Filters:   c.effectiveFiltersLocked(),
	}
}

// effectiveFiltersLocked merges user filters with tab overrides; overrides
// win.
func (c *Collection[T]) effectiveFiltersLocked() map[string]string {
	out := make(map[string]string, len(c.filters)+len(c.overrides))
	for k, v := range c.filters {
		out[k] = v
	}
	for k, v := range c.overrides {
		out[k] = v
	}
	return out
}

// run performs one request on its own goroutine.
func (c *Collection[T]) run(gen uint64, q paging.Query) {
	ctx, cancel := timeouts.WithTimeout(c.ctx, c.opts.Timeout, c.log, "list "+string(c.resource))
	page, err := c.fetch(ctx, q.Clone())
	cancel()

	var after func()

	c.mu.Lock()
	c.inflight--
	switch {
	case c.closed:
		// dropped
	case gen != c.issued:
		metrics.StaleResponsesTotal.WithLabelValues(string(c.resource)).Inc()
		c.log.Debug("stale response discarded",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.issued))
	case err != nil:
		c.loading = false
		c.lastErr = err
		after = c.failureHook(err)
	default:
		after = c.applyLocked(gen, q, page)
	}
	c.updateIdleLocked()
	c.mu.Unlock()

	if after != nil {
		after()
	}
}

// applyLocked installs a successful response: items and pagination change
// together, here and nowhere else. It may issue one follow-up request when
// the server reports the requested page is past the end.
func (c *Collection[T]) applyLocked(gen uint64, q paging.Query, page paging.Page[T]) func() {
	pag := paging.Normalize(&page.Pagination, q)

	if q.Page > pag.TotalPages && pag.TotalPages > 0 && len(page.Items) == 0 {
		if !c.pending {
			c.reqPage = pag.TotalPages
		}
		c.issueLocked()
		return nil
	}

	items := page.Items
	if len(items) > q.Limit {
		items = items[:q.Limit]
	}
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.pag = pag
	if !c.pending {
		// A debounced change still waiting keeps its page reset.
		c.reqPage, c.reqLimit = pag.Page, pag.Limit
	}
	c.loading = false
	c.loaded = true
	c.lastErr = nil
	c.applied = gen

	if h := c.opts.Hooks.OnLoaded; h != nil {
		return func() { h(c.resource) }
	}
	return nil
}

func (c *Collection[T]) failureHook(err error) func() {
	if errors.Is(err, context.Canceled) && c.ctx.Err() != nil {
		return nil
	}
	if apiclient.IsUnauthorized(err) {
		c.log.Info("fetch unauthorized")
		if h := c.opts.Hooks.OnUnauthorized; h != nil {
			return func() { h(c.resource, err) }
		}
		return nil
	}
	c.log.Warn("fetch failed", zap.Error(err))
	if h := c.opts.Hooks.OnError; h != nil {
		return func() { h(c.resource, err) }
	}
	return nil
}

func (c *Collection[T]) busyLocked() bool {
	return c.pending || c.inflight > 0
}

func (c *Collection[T]) updateIdleLocked() {
	busy := c.busyLocked()
	switch {
	case busy && c.idleClosed:
		c.idle = make(chan struct{})
		c.idleClosed = false
	case !busy && !c.idleClosed:
		close(c.idle)
		c.idleClosed = true
	}
}

func sameMap(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
