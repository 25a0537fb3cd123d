// internal/domain/models/billing.go
package models

// Subscription is a business's plan subscription. It appears both embedded
// on a Business and as a top-level record in the subscriptions list.
type Subscription struct {
	ID        string       `json:"_id,omitempty"`
	Business  *BusinessRef `json:"restaurant,omitempty"`
	Plan      string       `json:"plan"`
	PlanPrice Amount       `json:"planPrice"`
	Status    string       `json:"status,omitempty"` // active | expired | cancelled | trial
	StartDate Timestamp    `json:"startDate,omitempty"`
	EndDate   Timestamp    `json:"endDate,omitempty"`
	AutoRenew bool         `json:"autoRenew"`
	CreatedAt Timestamp    `json:"createdAt,omitempty"`
}

// Payment is a single gateway payment recorded by the backend.
type Payment struct {
	ID            string       `json:"_id"`
	Business      *BusinessRef `json:"restaurant,omitempty"`
	Plan          string       `json:"plan,omitempty"`
	Amount        Amount       `json:"amount"`
	Currency      string       `json:"currency,omitempty"`
	Status        string       `json:"status"` // created | captured | failed | refunded
	Method        string       `json:"method,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	CreatedAt     Timestamp    `json:"createdAt"`
}

// Renewal is an upcoming or processed subscription renewal.
type Renewal struct {
	ID        string       `json:"_id"`
	Business  *BusinessRef `json:"restaurant,omitempty"`
	Plan      string       `json:"plan"`
	Amount    Amount       `json:"amount"`
	Status    string       `json:"status"` // due | paid | overdue
	DueDate   Timestamp    `json:"dueDate"`
	CreatedAt Timestamp    `json:"createdAt,omitempty"`
}

// Plan is a sellable subscription plan.
type Plan struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Price        Amount    `json:"price"`
	DurationDays int       `json:"durationDays,omitempty"`
	Features     []string  `json:"features,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    Timestamp `json:"createdAt,omitempty"`
}

// Plan names recognised by plan analytics.
const (
	PlanFree  = "Free"
	PlanBasic = "Basic"
	PlanPro   = "Pro"
)

// KnownPlans lists the plans in display order.
var KnownPlans = []string{PlanFree, PlanBasic, PlanPro}
