// Package tabs is the admin console's tab registry.
//
// A tab token is the single source of truth for what is on screen and what
// must be fetched. The registry maps each token to the resources it loads,
// the hidden filters it forces, and whether it needs the stats snapshot or
// the charts dataset. Unknown tokens resolve to a not-implemented placeholder
// instead of failing.
package tabs

import (
	"net/url"
	"strings"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

// Param is the query parameter that carries the active tab.
const Param = "activeTab"

// Default is the tab shown when the URL names none (or an unknown one).
const Default = "dashboard"

// Category groups tabs in the sidebar.
type Category string

const (
	CategoryOverview       Category = "overview"
	CategoryBusinesses     Category = "businesses"
	CategoryUsers          Category = "users"
	CategorySubscriptions  Category = "subscriptions"
	CategoryPlans          Category = "plans"
	CategoryAdvertisements Category = "advertisements"
	CategoryAnalytics      Category = "analytics"
	CategorySupport        Category = "support"
	CategoryLegal          Category = "legal"
	CategoryWebsite        Category = "website"
	CategoryEmails         Category = "emails"
	CategoryBlogs          Category = "blogs"
	CategoryProfile        Category = "profile"
	CategoryComingSoon     Category = "coming-soon"
)

// View names the client-side view a tab mounts.
type View string

const (
	ViewDashboard      View = "dashboard"
	ViewTable          View = "table"
	ViewAnalytics      View = "analytics"
	ViewSettings       View = "settings"
	ViewComingSoon     View = "coming-soon"
	ViewNotImplemented View = "not-implemented"
)

// Tab is one registry entry.
type Tab struct {
	Token       string                                `json:"token"`
	Category    Category                              `json:"category"`
	Title       string                                `json:"title"`
	View        View                                  `json:"view"`
	Fetchers    []models.Resource                     `json:"fetchers,omitempty"`
	Overrides   map[models.Resource]map[string]string `json:"overrides,omitempty"`
	NeedsStats  bool                                  `json:"needsStats"`
	NeedsCharts bool                                  `json:"needsCharts"`
	Registered  bool                                  `json:"registered"`
}

// OverridesFor returns the forced filters for resource r (nil when none).
func (t Tab) OverridesFor(r models.Resource) map[string]string {
	return t.Overrides[r]
}

// Uses reports whether the tab loads resource r.
func (t Tab) Uses(r models.Resource) bool {
	for _, f := range t.Fetchers {
		if f == r {
			return true
		}
	}
	return false
}

type entry struct {
	token    string
	category Category
	title    string
	view     View
	fetch    []models.Resource
	force    map[models.Resource]map[string]string
	stats    bool
	charts   bool
}

func table(token string, cat Category, title string, r models.Resource, force map[string]string) entry {
	e := entry{token: token, category: cat, title: title, view: ViewTable, fetch: []models.Resource{r}}
	if force != nil {
		e.force = map[models.Resource]map[string]string{r: force}
	}
	return e
}

func page(token string, cat Category, title string, view View) entry {
	return entry{token: token, category: cat, title: title, view: view}
}

func soon(token, title string) entry {
	return page(token, CategoryComingSoon, title, ViewComingSoon)
}

var (
	biz  = models.ResourceBusinesses
	usr  = models.ResourceUsers
	sub  = models.ResourceSubscriptions
	pay  = models.ResourcePayments
	ren  = models.ResourceRenewals
	pln  = models.ResourcePlans
	ads  = models.ResourceAdvertisements
	tkt  = models.ResourceTickets
	faqs = models.ResourceFAQs
)

// entries is the registry in sidebar order.
var entries = []entry{
	{token: "dashboard", category: CategoryOverview, title: "Dashboard", view: ViewDashboard,
		fetch: []models.Resource{biz, usr}, stats: true, charts: true},
	{token: "overview-activity", category: CategoryOverview, title: "Recent Activity", view: ViewTable,
		fetch: []models.Resource{biz, usr}, stats: true},

	table("restaurants", CategoryBusinesses, "All Businesses", biz, nil),
	table("restaurants-pending", CategoryBusinesses, "Pending Approval", biz, map[string]string{"verificationStatus": "pending"}),
	table("restaurants-approved", CategoryBusinesses, "Approved", biz, map[string]string{"verificationStatus": "approved"}),
	table("restaurants-rejected", CategoryBusinesses, "Rejected", biz, map[string]string{"verificationStatus": "rejected"}),
	table("restaurants-archived", CategoryBusinesses, "Archived", biz, map[string]string{"isArchived": "true"}),
	table("restaurants-restaurant", CategoryBusinesses, "Restaurants", biz, map[string]string{"businessCategory": "Restaurant"}),
	table("restaurants-cafe", CategoryBusinesses, "Cafes", biz, map[string]string{"businessCategory": "Cafe"}),
	table("restaurants-food-mall", CategoryBusinesses, "Food Malls", biz, map[string]string{"businessCategory": "Food Mall"}),
	table("restaurants-portfolio", CategoryBusinesses, "Portfolios", biz, map[string]string{"businessType": "portfolio"}),
	table("restaurants-catalog", CategoryBusinesses, "Catalogs", biz, map[string]string{"businessType": "catalog"}),

	table("users", CategoryUsers, "All Users", usr, nil),
	table("users-owners", CategoryUsers, "Business Owners", usr, map[string]string{"role": models.RoleOwner}),
	table("users-customers", CategoryUsers, "Customers", usr, map[string]string{"role": models.RoleUser}),
	table("users-admins", CategoryUsers, "Administrators", usr, map[string]string{"role": models.RoleAdmin}),
	table("users-active", CategoryUsers, "Active Users", usr, map[string]string{"isActive": "true"}),
	table("users-inactive", CategoryUsers, "Inactive Users", usr, map[string]string{"isActive": "false"}),
	table("users-unverified", CategoryUsers, "Unverified Users", usr, map[string]string{"isVerified": "false"}),

	table("subscriptions", CategorySubscriptions, "All Subscriptions", sub, nil),
	table("subscriptions-active", CategorySubscriptions, "Active", sub, map[string]string{"status": "active"}),
	table("subscriptions-expired", CategorySubscriptions, "Expired", sub, map[string]string{"status": "expired"}),
	table("subscriptions-cancelled", CategorySubscriptions, "Cancelled", sub, map[string]string{"status": "cancelled"}),
	table("subscriptions-pending", CategorySubscriptions, "Pending", sub, map[string]string{"status": "pending"}),
	table("subscriptions-renewals", CategorySubscriptions, "Renewals", ren, nil),
	table("payments", CategorySubscriptions, "Payments", pay, nil),
	table("payments-failed", CategorySubscriptions, "Failed Payments", pay, map[string]string{"status": "failed"}),
	table("payments-refunded", CategorySubscriptions, "Refunds", pay, map[string]string{"status": "refunded"}),

	table("plans", CategoryPlans, "Plans", pln, nil),
	table("plans-active", CategoryPlans, "Active Plans", pln, map[string]string{"isActive": "true"}),
	{token: "plans-distribution", category: CategoryPlans, title: "Plan Distribution", view: ViewAnalytics, charts: true},

	table("advertisements", CategoryAdvertisements, "All Advertisements", ads, nil),
	table("advertisements-active", CategoryAdvertisements, "Running", ads, map[string]string{"status": "active"}),
	table("advertisements-scheduled", CategoryAdvertisements, "Scheduled", ads, map[string]string{"status": "scheduled"}),
	table("advertisements-expired", CategoryAdvertisements, "Ended", ads, map[string]string{"status": "expired"}),

	{token: "analytics", category: CategoryAnalytics, title: "Analytics", view: ViewAnalytics, stats: true, charts: true},
	{token: "analytics-growth", category: CategoryAnalytics, title: "Growth", view: ViewAnalytics, charts: true},
	{token: "analytics-revenue", category: CategoryAnalytics, title: "Revenue", view: ViewAnalytics, stats: true, charts: true},
	{token: "analytics-categories", category: CategoryAnalytics, title: "Categories", view: ViewAnalytics, charts: true},
	{token: "analytics-top-scanned", category: CategoryAnalytics, title: "Top Scanned", view: ViewAnalytics, charts: true},

	table("support-tickets", CategorySupport, "Support Tickets", tkt, nil),
	table("support-tickets-open", CategorySupport, "Open Tickets", tkt, map[string]string{"status": "open"}),
	table("support-tickets-in-progress", CategorySupport, "In Progress", tkt, map[string]string{"status": "in_progress"}),
	table("support-tickets-resolved", CategorySupport, "Resolved", tkt, map[string]string{"status": "resolved"}),
	table("support-faqs", CategorySupport, "FAQs", faqs, nil),

	page("legal-terms", CategoryLegal, "Terms of Service", ViewSettings),
	page("legal-privacy", CategoryLegal, "Privacy Policy", ViewSettings),
	page("legal-refund", CategoryLegal, "Refund Policy", ViewSettings),

	page("website-hero", CategoryWebsite, "Hero Section", ViewSettings),
	page("website-features", CategoryWebsite, "Features", ViewSettings),
	page("website-pricing", CategoryWebsite, "Pricing", ViewSettings),
	page("website-testimonials", CategoryWebsite, "Testimonials", ViewSettings),
	page("website-footer", CategoryWebsite, "Footer", ViewSettings),

	page("emails-templates", CategoryEmails, "Email Templates", ViewSettings),
	page("emails-campaigns", CategoryEmails, "Campaigns", ViewSettings),

	page("blogs", CategoryBlogs, "Blog Posts", ViewSettings),
	page("blogs-categories", CategoryBlogs, "Blog Categories", ViewSettings),

	page("profile", CategoryProfile, "My Profile", ViewSettings),
	page("profile-security", CategoryProfile, "Security", ViewSettings),

	soon("coming-soon-reports", "Reports"),
	soon("coming-soon-integrations", "Integrations"),
	soon("coming-soon-affiliates", "Affiliates"),
}

var (
	registry = map[string]Tab{}
	ordered  []Tab
)

func init() {
	for _, e := range entries {
		if _, dup := registry[e.token]; dup {
			panic("tabs: duplicate token " + e.token)
		}
		t := Tab{
			Token:       e.token,
			Category:    e.category,
			Title:       e.title,
			View:        e.view,
			Fetchers:    e.fetch,
			Overrides:   e.force,
			NeedsStats:  e.stats,
			NeedsCharts: e.charts,
			Registered:  true,
		}
		registry[e.token] = t
		ordered = append(ordered, t)
	}
}

// Lookup returns the registered tab for token.
func Lookup(token string) (Tab, bool) {
	t, ok := registry[token]
	return t, ok
}

// Resolve returns the registered tab for token, or a not-implemented
// placeholder carrying token. It never fails.
func Resolve(token string) Tab {
	token = strings.TrimSpace(token)
	if t, ok := registry[token]; ok {
		return t
	}
	return Tab{
		Token:    token,
		Category: CategoryComingSoon,
		Title:    "Not implemented",
		View:     ViewNotImplemented,
	}
}

// Initial picks the first tab from URL query values: the activeTab param
// when it names a registered tab, else Default.
func Initial(v url.Values) Tab {
	if token := strings.TrimSpace(v.Get(Param)); token != "" {
		if t, ok := registry[token]; ok {
			return t
		}
	}
	return registry[Default]
}

// URL returns base with activeTab set to token, keeping other params.
// An unparseable base is treated as a bare path.
func URL(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: base}
	}
	q := u.Query()
	q.Set(Param, token)
	u.RawQuery = q.Encode()
	return u.String()
}

// All returns every registered tab in sidebar order.
func All() []Tab {
	out := make([]Tab, len(ordered))
	copy(out, ordered)
	return out
}

// ByCategory groups registered tabs for the sidebar.
func ByCategory() map[Category][]Tab {
	out := make(map[Category][]Tab)
	for _, t := range ordered {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}
