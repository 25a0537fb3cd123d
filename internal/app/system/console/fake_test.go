package console

import (
	"context"
	"strings"
	"sync"

	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// fakeAPI serves fixed records and records every call.
type fakeAPI struct {
	mu         sync.Mutex
	businesses []models.Business
	users      []models.User
	categories []models.Category
	stats      models.Stats

	listErr   error
	statsErr  error
	mutateErr error
	result    models.MutationResult

	calls   []string
	queries map[string][]paging.Query
	patches []map[string]any
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		result:  models.MutationResult{Success: true},
		queries: map[string][]paging.Query{},
	}
}

func (f *fakeAPI) record(name string, q paging.Query) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.queries[name] = append(f.queries[name], q)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) lastQuery(name string) paging.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	qs := f.queries[name]
	if len(qs) == 0 {
		return paging.Query{}
	}
	return qs[len(qs)-1]
}

func (f *fakeAPI) setBusinesses(b []models.Business) {
	f.mu.Lock()
	f.businesses = b
	f.mu.Unlock()
}

func pageFrom[T any](all []T, q paging.Query) paging.Page[T] {
	limit := paging.ClampLimit(q.Limit)
	start := (max(q.Page, 1) - 1) * limit
	end := min(start+limit, len(all))
	items := []T{}
	if start < len(all) {
		items = append(items, all[start:end]...)
	}
	p := paging.Pagination{Page: q.Page, Limit: limit, Total: len(all)}
	return paging.Page[T]{Items: items, Pagination: paging.Normalize(&p, q)}
}

func (f *fakeAPI) ListUsers(_ context.Context, q paging.Query) (paging.Page[models.User], error) {
	f.record("users", q)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return paging.Page[models.User]{}, f.listErr
	}
	var out []models.User
	for _, u := range f.users {
		if role := q.Filters["role"]; role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return pageFrom(out, q), nil
}

func (f *fakeAPI) ListBusinesses(_ context.Context, q paging.Query) (paging.Page[models.Business], error) {
	f.record("restaurants", q)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return paging.Page[models.Business]{}, f.listErr
	}
	var out []models.Business
	for _, b := range f.businesses {
		if s := q.Filters["verificationStatus"]; s != "" && b.VerificationStatus != s {
			continue
		}
		if s := q.Filters["search"]; s != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(s)) {
			continue
		}
		out = append(out, b)
	}
	return pageFrom(out, q), nil
}

func (f *fakeAPI) ListSubscriptions(_ context.Context, q paging.Query) (paging.Page[models.Subscription], error) {
	f.record("subscriptions", q)
	return paging.Page[models.Subscription]{Items: []models.Subscription{}}, nil
}

func (f *fakeAPI) ListRenewals(_ context.Context, q paging.Query) (paging.Page[models.Renewal], error) {
	f.record("renewals", q)
	return paging.Page[models.Renewal]{Items: []models.Renewal{}}, nil
}

func (f *fakeAPI) ListPayments(_ context.Context, q paging.Query) (paging.Page[models.Payment], error) {
	f.record("payments", q)
	return paging.Page[models.Payment]{Items: []models.Payment{}}, nil
}

func (f *fakeAPI) ListPlans(_ context.Context, q paging.Query) (paging.Page[models.Plan], error) {
	f.record("plans", q)
	return paging.Page[models.Plan]{Items: []models.Plan{}}, nil
}

func (f *fakeAPI) ListAdvertisements(_ context.Context, q paging.Query) (paging.Page[models.Advertisement], error) {
	f.record("advertisements", q)
	return paging.Page[models.Advertisement]{Items: []models.Advertisement{}}, nil
}

func (f *fakeAPI) ListTickets(_ context.Context, q paging.Query) (paging.Page[models.SupportTicket], error) {
	f.record("tickets", q)
	return paging.Page[models.SupportTicket]{Items: []models.SupportTicket{}}, nil
}

func (f *fakeAPI) ListFAQs(_ context.Context, q paging.Query) (paging.Page[models.FAQ], error) {
	f.record("faqs", q)
	return paging.Page[models.FAQ]{Items: []models.FAQ{}}, nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]models.Category, error) {
	f.record("categories", paging.Query{})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

func (f *fakeAPI) GetStats(context.Context, apiclient.DateRange) (models.Stats, error) {
	f.record("stats", paging.Query{})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, f.statsErr
}

func (f *fakeAPI) mutate(name, id string, patch map[string]any) (models.MutationResult, error) {
	f.record(name, paging.Query{Filters: map[string]string{"id": id}})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if f.mutateErr != nil {
		return models.MutationResult{}, f.mutateErr
	}
	return f.result, nil
}

func (f *fakeAPI) UpdateBusiness(_ context.Context, id string, patch map[string]any) (models.MutationResult, error) {
	return f.mutate("updateBusiness", id, patch)
}

func (f *fakeAPI) UpdateUser(_ context.Context, id string, patch map[string]any) (models.MutationResult, error) {
	return f.mutate("updateUser", id, patch)
}

func (f *fakeAPI) UpdateUserRole(_ context.Context, id, role string) (models.MutationResult, error) {
	return f.mutate("updateUserRole", id, map[string]any{"role": role})
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) (models.MutationResult, error) {
	return f.mutate("deleteUser", id, nil)
}
