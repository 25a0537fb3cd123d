// internal/domain/models/stats.go
package models

import "encoding/json"

// Stats is the aggregate counter block returned by the admin stats endpoint.
type Stats struct {
	TotalBusinesses      int64  `json:"totalRestaurants"`
	PendingBusinesses    int64  `json:"pendingRestaurants"`
	ApprovedBusinesses   int64  `json:"approvedRestaurants"`
	ArchivedBusinesses   int64  `json:"archivedRestaurants"`
	TotalUsers           int64  `json:"totalUsers"`
	ActiveUsers          int64  `json:"activeUsers"`
	ActiveSubscriptions  int64  `json:"activeSubscriptions"`
	ExpiredSubscriptions int64  `json:"expiredSubscriptions"`
	FailedPayments       int64  `json:"failedPayments"`
	OpenTickets          int64  `json:"openTickets"`
	TotalScans           int64  `json:"totalScans"`
	TotalRevenue         Amount `json:"totalRevenue"`
}

// MutationResult is the envelope every mutation endpoint returns.
type MutationResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
