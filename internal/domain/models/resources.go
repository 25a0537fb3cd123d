// internal/domain/models/resources.go
package models

// Resource names one of the paginated collections the admin console manages.
type Resource string

const (
	ResourceUsers          Resource = "users"
	ResourceBusinesses     Resource = "restaurants"
	ResourceSubscriptions  Resource = "subscriptions"
	ResourcePayments       Resource = "payments"
	ResourceRenewals       Resource = "renewals"
	ResourcePlans          Resource = "plans"
	ResourceAdvertisements Resource = "advertisements"
	ResourceTickets        Resource = "tickets"
	ResourceFAQs           Resource = "faqs"
)

// AllResources lists every managed collection.
var AllResources = []Resource{
	ResourceUsers,
	ResourceBusinesses,
	ResourceSubscriptions,
	ResourcePayments,
	ResourceRenewals,
	ResourcePlans,
	ResourceAdvertisements,
	ResourceTickets,
	ResourceFAQs,
}

// Valid reports whether r is one of AllResources.
func (r Resource) Valid() bool {
	for _, known := range AllResources {
		if r == known {
			return true
		}
	}
	return false
}
