// internal/domain/models/business.go
package models

// Business is a restaurant, shop or portfolio owner account as returned by
// the admin API. The API and the admin screens call these "restaurants".
type Business struct {
	ID                 string        `json:"_id"`
	Name               string        `json:"name"`
	Email              string        `json:"email,omitempty"`
	Phone              string        `json:"phone,omitempty"`
	Slug               string        `json:"slug,omitempty"`
	BusinessType       string        `json:"businessType,omitempty"`
	BusinessCategory   string        `json:"businessCategory,omitempty"`
	VerificationStatus string        `json:"verificationStatus,omitempty"` // pending | approved | rejected
	RejectionReason    string        `json:"rejectionReason,omitempty"`
	IsArchived         bool          `json:"isArchived"`
	IsActive           bool          `json:"isActive"`
	QRScans            Count         `json:"qrScans"`
	Owner              *OwnerRef     `json:"owner,omitempty"`
	Subscription       *Subscription `json:"subscription,omitempty"`
	CreatedAt          Timestamp     `json:"createdAt"`
	UpdatedAt          Timestamp     `json:"updatedAt,omitempty"`
}

// Key identifies the record for de-duplication.
func (b Business) Key() string { return b.ID }

// PlanName returns the subscription plan or "" when there is none.
func (b Business) PlanName() string {
	if b.Subscription == nil {
		return ""
	}
	return b.Subscription.Plan
}

// PlanPrice returns the subscription price or 0 when there is none.
func (b Business) PlanPrice() Amount {
	if b.Subscription == nil {
		return 0
	}
	return b.Subscription.PlanPrice
}

// OwnerRef is the embedded owner summary on a business.
type OwnerRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// BusinessRef is the embedded business summary on users, subscriptions,
// payments and tickets.
type BusinessRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Category is a business category configured in the backend.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	IsActive bool   `json:"isActive"`
}
