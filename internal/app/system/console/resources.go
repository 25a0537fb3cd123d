// internal/app/system/console/resources.go
package console

import "github.com/scanmenu/admindesk/internal/domain/models"

// allowedFilters lists the user-settable filter keys per resource. Tab
// overrides are not restricted by this list.
var allowedFilters = map[models.Resource][]string{
	models.ResourceUsers:          {"search", "role", "isActive", "isVerified"},
	models.ResourceBusinesses:     {"search", "verificationStatus", "isArchived", "isActive", "businessType", "businessCategory", "plan"},
	models.ResourceSubscriptions:  {"search", "status", "plan"},
	models.ResourcePayments:       {"search", "status", "method"},
	models.ResourceRenewals:       {"search", "status"},
	models.ResourcePlans:          {"search", "isActive"},
	models.ResourceAdvertisements: {"search", "status", "placement"},
	models.ResourceTickets:        {"search", "status", "priority"},
	models.ResourceFAQs:           {"search", "category"},
}

// resourceLabels name resources in notices.
var resourceLabels = map[models.Resource]string{
	models.ResourceUsers:          "users",
	models.ResourceBusinesses:     "businesses",
	models.ResourceSubscriptions:  "subscriptions",
	models.ResourcePayments:       "payments",
	models.ResourceRenewals:       "renewals",
	models.ResourcePlans:          "plans",
	models.ResourceAdvertisements: "advertisements",
	models.ResourceTickets:        "support tickets",
	models.ResourceFAQs:           "FAQs",
}

// AllowedFilters returns the user-settable filter keys of r.
func AllowedFilters(r models.Resource) []string {
	return append([]string(nil), allowedFilters[r]...)
}
