package model

import "time"

// Roles a user can register with. A user's role is fixed at registration
// and never changes afterwards.
const (
	RoleOrganizer = "organizer" // creates and owns events
	RoleVendor    = "vendor"    // applies to events
)

// ValidRole reports whether s is one of the two accepted roles.
func ValidRole(s string) bool {
	return s == RoleOrganizer || s == RoleVendor
}

// User is the public shape of an account. The password hash never leaves
// the repository layer.
type User struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
