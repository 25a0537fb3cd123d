// Package console is the per-admin state container of the admin dashboard.
//
// Each signed-in admin gets one Console. It owns one collection per API
// resource, the aggregate stats snapshot, the charts dataset, the active
// tab, the notification read-set and the toast queue. Views are rendered
// from a Console snapshot; user actions go through the dispatcher methods,
// which call the API and then refetch, never editing loaded rows in place.
package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scanmenu/admindesk/internal/app/system/analytics"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/collection"
	"github.com/scanmenu/admindesk/internal/app/system/notices"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/app/system/tabs"
	"github.com/scanmenu/admindesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// API is the part of the admin REST API the console uses.
// *apiclient.Client implements it.
type API interface {
	ListUsers(ctx context.Context, q paging.Query) (paging.Page[models.User], error)
	ListBusinesses(ctx context.Context, q paging.Query) (paging.Page[models.Business], error)
	ListSubscriptions(ctx context.Context, q paging.Query) (paging.Page[models.Subscription], error)
	ListRenewals(ctx context.Context, q paging.Query) (paging.Page[models.Renewal], error)
	ListPayments(ctx context.Context, q paging.Query) (paging.Page[models.Payment], error)
	ListPlans(ctx context.Context, q paging.Query) (paging.Page[models.Plan], error)
	ListAdvertisements(ctx context.Context, q paging.Query) (paging.Page[models.Advertisement], error)
	ListTickets(ctx context.Context, q paging.Query) (paging.Page[models.SupportTicket], error)
	ListFAQs(ctx context.Context, q paging.Query) (paging.Page[models.FAQ], error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetStats(ctx context.Context, r apiclient.DateRange) (models.Stats, error)

	UpdateBusiness(ctx context.Context, id string, patch map[string]any) (models.MutationResult, error)
	UpdateUser(ctx context.Context, id string, patch map[string]any) (models.MutationResult, error)
	UpdateUserRole(ctx context.Context, id, role string) (models.MutationResult, error)
	DeleteUser(ctx context.Context, id string) (models.MutationResult, error)
}

var _ API = (*apiclient.Client)(nil)

// Auditor records admin actions. *auditlog.Logger implements it.
type Auditor interface {
	AdminAction(ctx context.Context, a auditlog.Actor, eventType, targetType, targetID string, err error, details map[string]string)
}

// DefaultSampleLimit caps how many businesses and users the charts
// dataset loads.
const DefaultSampleLimit = 1000

// Options configures a Console. Zero values select defaults.
type Options struct {
	ID          string
	Debounce    time.Duration
	PageSize    int
	SampleLimit int
	Logger      *zap.Logger
	Audit       Auditor
	Now         func() time.Time
}

// Console is one admin's dashboard state.
type Console struct {
	id    string
	api   API
	log   *zap.Logger
	audit Auditor
	now   func() time.Time

	sampleLimit int

	ctx    context.Context
	cancel context.CancelFunc

	fetchers   map[models.Resource]collection.Fetcher
	users      *collection.Collection[models.User]
	businesses *collection.Collection[models.Business]

	notices *notices.Queue
	bg      tracker

	mu       sync.Mutex
	active   tabs.Tab
	expired  bool
	lastSeen time.Time
	read     map[string]bool

	stats       models.Stats
	statsAt     time.Time
	statsLoaded bool
	statsIssued uint64

	charts        chartsData
	chartsIssued  uint64
	chartsApplied uint64

	derived      *analytics.Derived
	derivedGen   uint64
	derivedMonth time.Time
}

// New builds a console for one admin. No request is made until a tab is
// activated.
func New(api API, opts Options) *Console {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SampleLimit <= 0 {
		opts.SampleLimit = DefaultSampleLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Console{
		id:          opts.ID,
		api:         api,
		log:         opts.Logger.With(zap.String("console_id", opts.ID)),
		audit:       opts.Audit,
		now:         opts.Now,
		sampleLimit: opts.SampleLimit,
		ctx:         ctx,
		cancel:      cancel,
		fetchers:    make(map[models.Resource]collection.Fetcher, len(models.AllResources)),
		notices:     notices.NewQueue(0),
		read:        map[string]bool{},
		lastSeen:    opts.Now(),
		active:      tabs.Resolve(tabs.Default),
	}
	c.bg.init()

	c.users = register(c, opts, models.ResourceUsers, api.ListUsers)
	c.businesses = register(c, opts, models.ResourceBusinesses, api.ListBusinesses)
	register(c, opts, models.ResourceSubscriptions, api.ListSubscriptions)
	register(c, opts, models.ResourceRenewals, api.ListRenewals)
	register(c, opts, models.ResourcePayments, api.ListPayments)
	register(c, opts, models.ResourcePlans, api.ListPlans)
	register(c, opts, models.ResourceAdvertisements, api.ListAdvertisements)
	register(c, opts, models.ResourceTickets, api.ListTickets)
	register(c, opts, models.ResourceFAQs, api.ListFAQs)
	return c
}

func register[T any](c *Console, opts Options, r models.Resource, fetch collection.FetchFunc[T]) *collection.Collection[T] {
	col := collection.New(r, fetch, collection.Options{
		Debounce:       opts.Debounce,
		Limit:          opts.PageSize,
		SortBy:         "createdAt",
		SortOrder:      paging.Desc,
		AllowedFilters: allowedFilters[r],
		Logger:         c.log,
		Hooks: collection.Hooks{
			OnError:        c.onFetchError,
			OnUnauthorized: func(models.Resource, error) { c.expire() },
		},
	})
	c.fetchers[r] = col
	return col
}

// ID returns the console id.
func (c *Console) ID() string { return c.id }

// Fetcher returns the collection of resource r.
func (c *Console) Fetcher(r models.Resource) (collection.Fetcher, bool) {
	f, ok := c.fetchers[r]
	return f, ok
}

// Notices returns the toast queue.
func (c *Console) Notices() *notices.Queue { return c.notices }

// Touch records activity for idle eviction.
func (c *Console) Touch() {
	c.mu.Lock()
	c.lastSeen = c.now()
	c.mu.Unlock()
}

// IdleLongerThan reports whether the console has not been touched for more
// than ttl, measured on the console's clock.
func (c *Console) IdleLongerThan(ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.lastSeen) > ttl
}

// Expired reports whether the API rejected the admin's token. An expired
// console must be dropped and the admin sent to sign in again.
func (c *Console) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *Console) expire() {
	c.mu.Lock()
	already := c.expired
	c.expired = true
	c.mu.Unlock()
	if !already {
		c.log.Info("admin session rejected by api")
	}
}

func (c *Console) onFetchError(r models.Resource, err error) {
	c.notices.Error(fmt.Sprintf("Failed to load %s: %s", resourceLabels[r], apiclient.Reason(err)))
}

// ActiveTab returns the current tab.
func (c *Console) ActiveTab() tabs.Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate switches to the tab named token and fetches what it needs.
// Unknown tokens activate the not-implemented placeholder, which fetches
// nothing. Activating the current tab again refreshes it.
func (c *Console) Activate(token string) tabs.Tab {
	tab := tabs.Resolve(token)

	c.mu.Lock()
	c.active = tab
	needStats := tab.NeedsStats || !c.statsLoaded
	c.mu.Unlock()

	for _, r := range tab.Fetchers {
		f, ok := c.fetchers[r]
		if !ok {
			continue
		}
		f.SetOverrides(tab.OverridesFor(r))
		f.Refresh()
	}
	if needStats {
		c.RefreshStats()
	}
	if tab.NeedsCharts {
		c.RefreshCharts()
	}
	c.log.Debug("tab activated", zap.String("tab", tab.Token), zap.Bool("registered", tab.Registered))
	return tab
}

// WaitIdle blocks until the active tab's collections, the stats and the
// charts dataset have no request pending, or ctx ends.
func (c *Console) WaitIdle(ctx context.Context) error {
	tab := c.ActiveTab()
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range tab.Fetchers {
		if f, ok := c.fetchers[r]; ok {
			g.Go(func() error { return f.WaitIdle(gctx) })
		}
	}
	g.Go(func() error { return c.bg.wait(gctx) })
	return g.Wait()
}

// Close cancels everything in flight and stops all timers.
func (c *Console) Close() {
	c.cancel()
	for _, f := range c.fetchers {
		f.Close()
	}
}

// tracker counts background requests (stats, charts) and lets callers wait
// for them to drain.
type tracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *tracker) init() {
	t.idle = make(chan struct{})
	close(t.idle)
}

func (t *tracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *tracker) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

func (t *tracker) wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		ch, busy := t.idle, t.n > 0
		t.mu.Unlock()
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
