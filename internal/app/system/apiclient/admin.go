// internal/app/system/apiclient/admin.go
package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// Admin API paths.
const (
	pathUsers          = "admin/users"
	pathBusinesses     = "admin/restaurants"
	pathSubscriptions  = "admin/subscriptions"
	pathRenewals       = "admin/subscriptions/renewals"
	pathPayments       = "admin/payments"
	pathPlans          = "admin/plans"
	pathAdvertisements = "admin/advertisements"
	pathTickets        = "admin/support/tickets"
	pathFAQs           = "admin/faqs"
	pathCategories     = "admin/categories"
	pathStats          = "admin/stats"
	pathLogin          = "auth/login"
)

func (c *Client) ListUsers(ctx context.Context, q paging.Query) (paging.Page[models.User], error) {
	return List[models.User](ctx, c, string(models.ResourceUsers), pathUsers, q)
}

func (c *Client) ListBusinesses(ctx context.Context, q paging.Query) (paging.Page[models.Business], error) {
	return List[models.Business](ctx, c, string(models.ResourceBusinesses), pathBusinesses, q)
}

func (c *Client) ListSubscriptions(ctx context.Context, q paging.Query) (paging.Page[models.Subscription], error) {
	return List[models.Subscription](ctx, c, string(models.ResourceSubscriptions), pathSubscriptions, q)
}

func (c *Client) ListRenewals(ctx context.Context, q paging.Query) (paging.Page[models.Renewal], error) {
	return List[models.Renewal](ctx, c, string(models.ResourceRenewals), pathRenewals, q)
}

func (c *Client) ListPayments(ctx context.Context, q paging.Query) (paging.Page[models.Payment], error) {
	return List[models.Payment](ctx, c, string(models.ResourcePayments), pathPayments, q)
}

func (c *Client) ListPlans(ctx context.Context, q paging.Query) (paging.Page[models.Plan], error) {
	return List[models.Plan](ctx, c, string(models.ResourcePlans), pathPlans, q)
}

func (c *Client) ListAdvertisements(ctx context.Context, q paging.Query) (paging.Page[models.Advertisement], error) {
	return List[models.Advertisement](ctx, c, string(models.ResourceAdvertisements), pathAdvertisements, q)
}

func (c *Client) ListTickets(ctx context.Context, q paging.Query) (paging.Page[models.SupportTicket], error) {
	return List[models.SupportTicket](ctx, c, string(models.ResourceTickets), pathTickets, q)
}

func (c *Client) ListFAQs(ctx context.Context, q paging.Query) (paging.Page[models.FAQ], error) {
	return List[models.FAQ](ctx, c, string(models.ResourceFAQs), pathFAQs, q)
}

// GetBusiness fetches one business by id.
func (c *Client) GetBusiness(ctx context.Context, id string) (models.Business, error) {
	return Get[models.Business](ctx, c, string(models.ResourceBusinesses), pathBusinesses+"/"+url.PathEscape(id))
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	return Get[models.User](ctx, c, string(models.ResourceUsers), pathUsers+"/"+url.PathEscape(id))
}

// ListCategories returns the business categories configured in the backend.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	page, err := List[models.Category](ctx, c, "categories", pathCategories, paging.Query{Page: 1, Limit: paging.MaxPageSize})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// DateRange bounds the stats endpoint. Zero values are omitted.
type DateRange struct {
	From time.Time
	To   time.Time
}

// GetStats returns the aggregate counters for the dashboard.
func (c *Client) GetStats(ctx context.Context, r DateRange) (models.Stats, error) {
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("startDate", r.From.UTC().Format("2006-01-02"))
	}
	if !r.To.IsZero() {
		q.Set("endDate", r.To.UTC().Format("2006-01-02"))
	}
	return getValues[models.Stats](ctx, c, "stats", pathStats, q)
}

// UpdateBusiness applies a partial update to a business.
func (c *Client) UpdateBusiness(ctx context.Context, id string, patch map[string]any) (models.MutationResult, error) {
	return c.Update(ctx, string(models.ResourceBusinesses), pathBusinesses+"/"+url.PathEscape(id), patch)
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, id string, patch map[string]any) (models.MutationResult, error) {
	return c.Update(ctx, string(models.ResourceUsers), pathUsers+"/"+url.PathEscape(id), patch)
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (models.MutationResult, error) {
	return c.Update(ctx, string(models.ResourceUsers), pathUsers+"/"+url.PathEscape(id)+"/role", map[string]any{"role": role})
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) (models.MutationResult, error) {
	return c.Delete(ctx, string(models.ResourceUsers), pathUsers+"/"+url.PathEscape(id))
}

// LoginResult is the body of a successful sign-in.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type loginEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    models.User  `json:"user"`
	Data    *LoginResult `json:"data"`
}

func (e *loginEnvelope) accepted() error {
	if !e.Success {
		return &MutationError{Message: e.Message}
	}
	return nil
}

// Login exchanges admin credentials for an API token. Invalid credentials
// come back as ErrUnauthorized or a *MutationError.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var env loginEnvelope
	err := c.do(ctx, request{
		resource: "auth",
		method:   http.MethodPost,
		path:     pathLogin,
		body:     map[string]string{"email": email, "password": password},
	}, &env)
	if err != nil {
		return LoginResult{}, err
	}
	if env.Data != nil && env.Data.Token != "" {
		return *env.Data, nil
	}
	return LoginResult{Token: env.Token, User: env.User}, nil
}

// Ping checks that the API answers at all. Any HTTP response, including
// 401, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, request{resource: "health", method: http.MethodGet, path: "health"}, nil)
	if err == nil || IsUnauthorized(err) {
		return nil
	}
	if _, ok := err.(*StatusError); ok {
		return nil
	}
	return err
}
