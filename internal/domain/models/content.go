// internal/domain/models/content.go
package models

// Advertisement is a banner shown on public menus.
type Advertisement struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	TargetURL   string    `json:"targetUrl,omitempty"`
	Placement   string    `json:"placement,omitempty"`
	IsActive    bool      `json:"isActive"`
	Clicks      Count     `json:"clicks"`
	Impressions Count     `json:"impressions"`
	StartDate   Timestamp `json:"startDate,omitempty"`
	EndDate     Timestamp `json:"endDate,omitempty"`
	CreatedAt   Timestamp `json:"createdAt,omitempty"`
}

// SupportTicket is a support conversation opened by a business or user.
type SupportTicket struct {
	ID           string       `json:"_id"`
	Subject      string       `json:"subject"`
	Status       string       `json:"status"`   // open | in_progress | resolved | closed
	Priority     string       `json:"priority"` // low | medium | high
	Business     *BusinessRef `json:"restaurant,omitempty"`
	User         *OwnerRef    `json:"user,omitempty"`
	MessageCount int          `json:"messageCount"`
	CreatedAt    Timestamp    `json:"createdAt"`
	UpdatedAt    Timestamp    `json:"updatedAt,omitempty"`
}

// FAQ is a help-centre question and answer.
type FAQ struct {
	ID       string `json:"_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}
