// Package search is the console's quick search over records that are
// already loaded.
//
// It only looks at what the console holds in memory (the charts sample and
// the current table pages), so results are best-effort. Results always
// carry Authoritative=false and the number of records searched.
package search

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// DefaultLimit caps each result list.
const DefaultLimit = 8

// MinQueryLen is the shortest query that is searched.
const MinQueryLen = 1

// BusinessHit is a matched business.
type BusinessHit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
}

// UserHit is a matched user.
type UserHit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	Restaurant string `json:"restaurant,omitempty"`
}

// Results is the outcome of one search.
type Results struct {
	Query         string        `json:"query"`
	Businesses    []BusinessHit `json:"businesses"`
	Users         []UserHit     `json:"users"`
	Searched      int           `json:"searched"`
	Authoritative bool          `json:"authoritative"`
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool { return len(r.Businesses) == 0 && len(r.Users) == 0 }

// Run matches query as a case-insensitive substring against business name,
// email, businessType and businessCategory, and user name, email and
// restaurant name. Records are de-duplicated by ID (first occurrence wins),
// so callers can pass overlapping slices. limit <= 0 uses DefaultLimit.
func Run(query string, businesses []models.Business, users []models.User, limit int) Results {
	q := fold(query)
	res := Results{
		Query:      strings.TrimSpace(query),
		Businesses: []BusinessHit{},
		Users:      []UserHit{},
	}
	if len([]rune(q)) < MinQueryLen {
		return res
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	seenBiz := make(map[string]struct{}, len(businesses))
	for _, b := range businesses {
		if !firstSeen(seenBiz, b.Key()) {
			continue
		}
		res.Searched++
		if len(res.Businesses) >= limit {
			continue
		}
		if matches(q, b.Name, b.Email, b.BusinessType, b.BusinessCategory) {
			res.Businesses = append(res.Businesses, BusinessHit{
				ID:       b.ID,
				Name:     b.Name,
				Email:    b.Email,
				Category: b.BusinessCategory,
				Status:   b.VerificationStatus,
			})
		}
	}

	seenUsr := make(map[string]struct{}, len(users))
	for _, u := range users {
		if !firstSeen(seenUsr, u.Key()) {
			continue
		}
		res.Searched++
		if len(res.Users) >= limit {
			continue
		}
		restaurant := ""
		if u.Restaurant != nil {
			restaurant = u.Restaurant.Name
		}
		if matches(q, u.Name, u.Email, restaurant) {
			res.Users = append(res.Users, UserHit{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				Role:       u.Role,
				Restaurant: restaurant,
			})
		}
	}
	return res
}

// firstSeen records id and reports whether it was new. Records without an
// ID are never de-duplicated.
func firstSeen(seen map[string]struct{}, id string) bool {
	if id == "" {
		return true
	}
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	return true
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(fold(f), q) {
			return true
		}
	}
	return false
}

// fold lower-cases s and strips diacritics so "cafe" finds "Café".
func fold(s string) string {
	return strings.ToLower(text.Fold(strings.TrimSpace(s)))
}
