package search

import (
	"testing"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

var (
	businesses = []models.Business{
		{ID: "b1", Name: "Johnny's Diner", Email: "hello@johnnys.in", BusinessCategory: "Restaurant"},
		{ID: "b2", Name: "Blue Cup", BusinessType: "cafe", BusinessCategory: "Cafe"},
		{ID: "b3", Name: "City Centre Court", BusinessCategory: "Food Mall"},
	}
	users = []models.User{
		{ID: "u1", Name: "John Mathew", Email: "john@example.com", Role: models.RoleOwner},
		{ID: "u2", Name: "Priya", Email: "priya@example.com", Restaurant: &models.BusinessRef{ID: "b2", Name: "Blue Cup"}},
		{ID: "u3", Name: "Ravi", Email: "ravi@example.com"},
	}
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantBiz  []string
		wantUser []string
	}{
		{"name substring any case", "JOHN", []string{"b1"}, []string{"u1"}},
		{"business email", "johnnys.in", []string{"b1"}, nil},
		{"business type and category", "cafe", []string{"b2"}, nil},
		{"category with space", "food mall", []string{"b3"}, nil},
		{"nested restaurant name", "blue", []string{"b2"}, []string{"u2"}},
		{"user email", "ravi@", nil, []string{"u3"}},
		{"no match", "zzz", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(tt.query, businesses, users, 0)
			if res.Authoritative {
				t.Error("Authoritative = true")
			}
			assertIDs(t, "businesses", bizIDs(res), tt.wantBiz)
			assertIDs(t, "users", userIDs(res), tt.wantUser)
		})
	}
}

func TestRun_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   "} {
		res := Run(q, businesses, users, 0)
		if !res.Empty() || res.Searched != 0 {
			t.Errorf("Run(%q) = %+v, want empty", q, res)
		}
		if res.Businesses == nil || res.Users == nil {
			t.Errorf("Run(%q) returned nil slices", q)
		}
	}
}

func TestRun_DeduplicatesByID(t *testing.T) {
	both := append(append([]models.Business{}, businesses...), businesses[0])
	res := Run("john", both, append(users, users[0]), 0)
	if len(res.Businesses) != 1 || len(res.Users) != 1 {
		t.Errorf("hits = %d businesses, %d users, want 1 and 1", len(res.Businesses), len(res.Users))
	}
	if res.Searched != len(businesses)+len(users) {
		t.Errorf("Searched = %d, want %d", res.Searched, len(businesses)+len(users))
	}
}

func TestRun_Limit(t *testing.T) {
	var many []models.Business
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		many = append(many, models.Business{ID: id, Name: "Cafe " + id})
	}
	res := Run("cafe", many, nil, 3)
	if len(res.Businesses) != 3 {
		t.Errorf("len = %d, want 3", len(res.Businesses))
	}
	if res.Searched != 5 {
		t.Errorf("Searched = %d, want 5", res.Searched)
	}
}

func bizIDs(r Results) []string {
	var ids []string
	for _, h := range r.Businesses {
		ids = append(ids, h.ID)
	}
	return ids
}

func userIDs(r Results) []string {
	var ids []string
	for _, h := range r.Users {
		ids = append(ids, h.ID)
	}
	return ids
}

func assertIDs(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", what, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", what, got, want)
			return
		}
	}
}
