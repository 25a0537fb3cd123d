// Package notices holds the two kinds of messages the console shows the
// admin: notifications derived from the aggregate stats, and short-lived
// toast notices produced by fetches and actions.
package notices

import (
	"fmt"
	"time"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

// Stable notification IDs. One ID per underlying condition, so recomputing
// never duplicates an alert.
const (
	IDPendingBusinesses    = "pending-businesses"
	IDExpiredSubscriptions = "expired-subscriptions"
	IDOpenTickets          = "open-tickets"
	IDFailedPayments       = "failed-payments"
)

// Notification is an alert about a condition that needs the admin's
// attention. Action is the tab token that handles it.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	Read    bool      `json:"read"`
	Action  string    `json:"action"`
}

type rule struct {
	id     string
	title  string
	noun   string
	plural string
	action string
	count  func(models.Stats) int64
}

var rules = []rule{
	{IDPendingBusinesses, "Pending approvals", "business is", "businesses are", "restaurants-pending",
		func(s models.Stats) int64 { return s.PendingBusinesses }},
	{IDExpiredSubscriptions, "Expired subscriptions", "subscription has", "subscriptions have", "subscriptions-expired",
		func(s models.Stats) int64 { return s.ExpiredSubscriptions }},
	{IDOpenTickets, "Open support tickets", "ticket is", "tickets are", "support-tickets-open",
		func(s models.Stats) int64 { return s.OpenTickets }},
	{IDFailedPayments, "Failed payments", "payment has", "payments have", "payments-failed",
		func(s models.Stats) int64 { return s.FailedPayments }},
}

var verbs = map[string]string{
	IDPendingBusinesses:    "waiting for approval",
	IDExpiredSubscriptions: "expired",
	IDOpenTickets:          "open",
	IDFailedPayments:       "failed",
}

// Derive builds the notification set for stats. Only conditions with a
// positive count produce a notification. The result depends only on the
// arguments; at stamps every notification.
func Derive(stats models.Stats, at time.Time) []Notification {
	out := make([]Notification, 0, len(rules))
	for _, r := range rules {
		n := r.count(stats)
		if n <= 0 {
			continue
		}
		subject := r.noun
		if n != 1 {
			subject = r.plural
		}
		out = append(out, Notification{
			ID:      r.id,
			Title:   r.title,
			Message: fmt.Sprintf("%d %s %s", n, subject, verbs[r.id]),
			Time:    at,
			Action:  r.action,
		})
	}
	return out
}

// MarkRead sets Read on every notification whose ID is in read.
func MarkRead(ns []Notification, read map[string]bool) []Notification {
	out := make([]Notification, len(ns))
	for i, n := range ns {
		n.Read = read[n.ID]
		out[i] = n
	}
	return out
}

// Unread counts notifications not yet read.
func Unread(ns []Notification) int {
	c := 0
	for _, n := range ns {
		if !n.Read {
			c++
		}
	}
	return c
}
