package session

import "strings"

// Role gates what a user may do with templates and notes.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RolePractitioner Role = "PRACTITIONER"
	RoleStaff        Role = "STAFF"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePractitioner, RoleStaff:
		return true
	}
	return false
}

// User is the signed-in account as returned by the backend. Only the role
// and names are read by the form and list views.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Clinic    *int64 `json:"clinic"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// Initials returns up to two upper-case initials for avatars.
func (u User) Initials() string {
	var out []rune
	for _, part := range []string{u.FirstName, u.LastName} {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, []rune(strings.ToUpper(part))[0])
		}
	}
	return string(out)
}

// IsAdmin reports whether the user may manage templates.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
