// internal/app/system/console/data.go
package console

import (
	"context"
	"fmt"

	"github.com/scanmenu/admindesk/internal/app/system/analytics"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"github.com/scanmenu/admindesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// chartsData is the dataset analytics are computed over. It is loaded
// separately from the table pages so charts never depend on what page the
// admin is looking at.
type chartsData struct {
	loaded          bool
	businesses      []models.Business
	users           []models.User
	categories      []models.Category
	totalBusinesses int
	totalUsers      int
}

// RefreshStats reloads the aggregate counters. A newer call supersedes an
// older one still in flight.
func (c *Console) RefreshStats() {
	c.mu.Lock()
	c.statsIssued++
	gen := c.statsIssued
	c.mu.Unlock()

	c.bg.begin()
	go func() {
		defer c.bg.end()

		ctx, cancel := timeouts.WithTimeout(c.ctx, timeouts.Short(), c.log, "get stats")
		stats, err := c.api.GetStats(ctx, apiclient.DateRange{})
		cancel()

		c.mu.Lock()
		if gen != c.statsIssued || c.ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		if err == nil {
			c.stats = stats
			c.statsAt = c.now()
			c.statsLoaded = true
		}
		c.mu.Unlock()

		switch {
		case err == nil:
		case apiclient.IsUnauthorized(err):
			c.expire()
		default:
			c.log.Warn("stats fetch failed", zap.Error(err))
			c.notices.Error("Failed to load stats: " + apiclient.Reason(err))
		}
	}()
}

// RefreshCharts reloads the charts dataset: up to SampleLimit businesses
// and users (newest first) plus the category list, fetched concurrently.
// The dataset is replaced only when every required part succeeds.
func (c *Console) RefreshCharts() {
	c.mu.Lock()
	c.chartsIssued++
	gen := c.chartsIssued
	c.mu.Unlock()

	c.bg.begin()
	go func() {
		defer c.bg.end()

		ctx, cancel := timeouts.WithTimeout(c.ctx, timeouts.Long(), c.log, "load charts dataset")
		data, err := c.loadCharts(ctx)
		cancel()

		c.mu.Lock()
		if gen != c.chartsIssued || c.ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		if err == nil {
			c.charts = data
			c.chartsApplied = gen
		}
		c.mu.Unlock()

		switch {
		case err == nil:
		case apiclient.IsUnauthorized(err):
			c.expire()
		default:
			c.log.Warn("charts dataset fetch failed", zap.Error(err))
			c.notices.Error("Failed to load analytics: " + apiclient.Reason(err))
		}
	}()
}

func (c *Console) loadCharts(ctx context.Context) (chartsData, error) {
	var data chartsData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, total, err := fetchAll(gctx, c.api.ListBusinesses, c.sampleLimit)
		if err != nil {
			return fmt.Errorf("businesses: %w", err)
		}
		data.businesses, data.totalBusinesses = items, total
		return nil
	})
	g.Go(func() error {
		items, total, err := fetchAll(gctx, c.api.ListUsers, c.sampleLimit)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		data.users, data.totalUsers = items, total
		return nil
	})
	g.Go(func() error {
		cats, err := c.api.ListCategories(gctx)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return err
			}
			// Charts fall back to the built-in category set.
			c.log.Info("category list unavailable", zap.Error(err))
			return nil
		}
		data.categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return chartsData{}, err
	}
	data.loaded = true
	return data, nil
}

// fetchAll pages through a list endpoint, newest first, until limit
// records are loaded or the list ends. total is the server-reported total.
func fetchAll[T any](ctx context.Context, list func(context.Context, paging.Query) (paging.Page[T], error), limit int) ([]T, int, error) {
	out := make([]T, 0, min(limit, paging.MaxPageSize))
	total := 0
	for page := 1; len(out) < limit; page++ {
		p, err := list(ctx, paging.Query{
			Page:      page,
			Limit:     paging.MaxPageSize,
			SortBy:    "createdAt",
			SortOrder: paging.Desc,
		})
		if err != nil {
			return nil, 0, err
		}
		total = p.Pagination.Total
		out = append(out, p.Items...)
		if len(p.Items) == 0 || page >= p.Pagination.TotalPages {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, max(total, len(out)), nil
}

// Analytics returns the chart series computed over the charts dataset, or
// nil before the dataset first loads. The result is memoized until the
// dataset changes or the calendar month rolls over.
func (c *Console) Analytics() *analytics.Derived {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.charts.loaded {
		return nil
	}
	now := c.now()
	month := analytics.MonthOf(now)
	if c.derived == nil || c.derivedGen != c.chartsApplied || !c.derivedMonth.Equal(month) {
		d := analytics.Derive(analytics.Input{
			Businesses:      c.charts.businesses,
			Users:           c.charts.users,
			Categories:      c.charts.categories,
			TotalBusinesses: c.charts.totalBusinesses,
			TotalUsers:      c.charts.totalUsers,
			Now:             now,
		})
		c.derived = &d
		c.derivedGen = c.chartsApplied
		c.derivedMonth = month
	}
	return c.derived
}

// Stats returns the last loaded stats and whether any were loaded.
func (c *Console) Stats() (models.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.statsLoaded
}
