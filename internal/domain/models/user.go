// internal/domain/models/user.go
package models

// User is a platform account (business owner, staff or admin).
type User struct {
	ID         string       `json:"_id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Role       string       `json:"role"` // user | restaurant_owner | admin | superadmin
	IsActive   bool         `json:"isActive"`
	IsVerified bool         `json:"isVerified"`
	Restaurant *BusinessRef `json:"restaurant,omitempty"`
	LastLogin  Timestamp    `json:"lastLogin,omitempty"`
	CreatedAt  Timestamp    `json:"createdAt"`
}

// Key identifies the record for de-duplication.
func (u User) Key() string { return u.ID }

// Roles an admin may assign.
const (
	RoleUser       = "user"
	RoleOwner      = "restaurant_owner"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)
