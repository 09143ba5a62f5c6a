package entity

import "time"

// User is the minimal projection of a tenant user the core needs: identity
// plus the role set used to authorize approvers. Credential management
// lives elsewhere.
type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	StoreID   *string   `json:"store_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
