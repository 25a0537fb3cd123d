package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// FakeAPIToken is the bearer token FakeAPI accepts and issues.
const FakeAPIToken = "fake-admin-token"

// FakeAPIPassword is the password FakeAPI accepts at sign-in.
const FakeAPIPassword = "secret"

// FakeAPI is an in-memory admin API served over httptest. It speaks the
// same envelopes as the real API: {data, pagination} for lists and
// {success, message?} for mutations.
type FakeAPI struct {
	Server *httptest.Server

	mu           sync.Mutex
	businesses   []models.Business
	users        []models.User
	categories   []models.Category
	stats        models.Stats
	unauthorized bool
	failMutation string
	requests     []string
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API root to configure clients with.
func (f *FakeAPI) URL() string { return f.Server.URL + "/api" }

// SetBusinesses replaces the business records.
func (f *FakeAPI) SetBusinesses(b ...models.Business) {
	f.mu.Lock()
	f.businesses = append([]models.Business(nil), b...)
	f.mu.Unlock()
}

// SetUsers replaces the user records.
func (f *FakeAPI) SetUsers(u ...models.User) {
	f.mu.Lock()
	f.users = append([]models.User(nil), u...)
	f.mu.Unlock()
}

// SetCategories replaces the category list.
func (f *FakeAPI) SetCategories(c ...models.Category) {
	f.mu.Lock()
	f.categories = append([]models.Category(nil), c...)
	f.mu.Unlock()
}

// SetStats replaces the stats block.
func (f *FakeAPI) SetStats(s models.Stats) {
	f.mu.Lock()
	f.stats = s
	f.mu.Unlock()
}

// SetUnauthorized makes every admin call answer 401.
func (f *FakeAPI) SetUnauthorized(v bool) {
	f.mu.Lock()
	f.unauthorized = v
	f.mu.Unlock()
}

// FailMutations makes every mutation answer {success:false, message}.
// An empty message restores success.
func (f *FakeAPI) FailMutations(message string) {
	f.mu.Lock()
	f.failMutation = message
	f.mu.Unlock()
}

// Count returns how many requests matched "METHOD /path" (path without
// the /api prefix).
func (f *FakeAPI) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	n := 0
	for _, r := range f.requests {
		if r == key {
			n++
		}
	}
	return n
}

// Business returns the stored business with id.
func (f *FakeAPI) Business(id string) (models.Business, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.businesses {
		if b.ID == id {
			return b, true
		}
	}
	return models.Business{}, false
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+path)
	unauthorized := f.unauthorized
	f.mu.Unlock()

	switch {
	case path == "/health":
		writeFake(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	case path == "/auth/login" && r.Method == http.MethodPost:
		f.login(w, r)
		return
	}

	if unauthorized || r.Header.Get("Authorization") != "Bearer "+FakeAPIToken {
		writeFake(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch r.Method {
	case http.MethodGet:
		f.get(w, r, path)
	case http.MethodPut, http.MethodDelete:
		f.mutate(w, r, parts)
	default:
		writeFake(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed"})
	}
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password != FakeAPIPassword {
		writeFake(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
		return
	}

	f.mu.Lock()
	user := models.User{ID: "admin-1", Name: "Admin", Email: in.Email, Role: models.RoleAdmin}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, in.Email) {
			user = u
		}
	}
	f.mu.Unlock()

	writeFake(w, http.StatusOK, map[string]any{"success": true, "token": FakeAPIToken, "user": user})
}

func (f *FakeAPI) get(w http.ResponseWriter, r *http.Request, path string) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()

	switch path {
	case "/admin/restaurants":
		var out []models.Business
		for _, b := range f.businesses {
			if v := q.Get("verificationStatus"); v != "" && b.VerificationStatus != v {
				continue
			}
			if v := q.Get("isArchived"); v != "" && strconv.FormatBool(b.IsArchived) != v {
				continue
			}
			if v := q.Get("search"); v != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(v)) {
				continue
			}
			out = append(out, b)
		}
		writePage(w, out, q)
	case "/admin/users":
		var out []models.User
		for _, u := range f.users {
			if v := q.Get("role"); v != "" && u.Role != v {
				continue
			}
			out = append(out, u)
		}
		writePage(w, out, q)
	case "/admin/categories":
		writePage(w, f.categories, q)
	case "/admin/stats":
		writeFake(w, http.StatusOK, map[string]any{"success": true, "data": f.stats})
	default:
		writePage(w, []struct{}{}, q)
	}
}

func (f *FakeAPI) mutate(w http.ResponseWriter, r *http.Request, parts []string) {
	var patch map[string]any
	_ = json.NewDecoder(r.Body).Decode(&patch)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMutation != "" {
		writeFake(w, http.StatusOK, map[string]any{"success": false, "message": f.failMutation})
		return
	}

	// admin/restaurants/{id}
	if len(parts) == 3 && parts[1] == "restaurants" && r.Method == http.MethodPut {
		for i := range f.businesses {
			if f.businesses[i].ID != parts[2] {
				continue
			}
			if v, ok := patch["verificationStatus"].(string); ok {
				f.businesses[i].VerificationStatus = v
			}
			if v, ok := patch["isArchived"].(bool); ok {
				f.businesses[i].IsArchived = v
			}
			writeFake(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		writeFake(w, http.StatusNotFound, map[string]any{"message": "Restaurant not found"})
		return
	}

	// admin/users/{id}[/role]
	if len(parts) >= 3 && parts[1] == "users" {
		for i := range f.users {
			if f.users[i].ID != parts[2] {
				continue
			}
			switch {
			case r.Method == http.MethodDelete:
				f.users = append(f.users[:i], f.users[i+1:]...)
			case len(parts) == 4 && parts[3] == "role":
				if v, ok := patch["role"].(string); ok {
					f.users[i].Role = v
				}
			default:
				if v, ok := patch["isActive"].(bool); ok {
					f.users[i].IsActive = v
				}
			}
			writeFake(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		writeFake(w, http.StatusNotFound, map[string]any{"message": "User not found"})
		return
	}

	writeFake(w, http.StatusNotFound, map[string]any{"message": "not found"})
}

func writePage[T any](w http.ResponseWriter, all []T, q map[string][]string) {
	page, _ := strconv.Atoi(first(q["page"]))
	limit, _ := strconv.Atoi(first(q["limit"]))
	limit = paging.ClampLimit(limit)
	page = max(page, 1)

	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	items := append([]T{}, all[start:end]...)
	total := len(all)

	writeFake(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
		"pagination": map[string]int{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func writeFake(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
