package accounts

// Role represents an account's capability tier. The numeric values are
// stored in the role_id column and must not be reordered.
type Role int

const (
	RoleAdmin Role = 1
	RoleUser  Role = 2
	RoleGuest Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	case RoleGuest:
		return "guest"
	}
	return "unknown"
}

type Account struct {
	ID           int    `json:"account_id"`        // Assigned by the store on creation, immutable
	Username     string `json:"username"`          // Unique, set at creation
	PasswordHash string `json:"-"`                 // Encoded password hash - never serialize
	RoleID       Role   `json:"role_id,omitempty"` // Capability tier
}

// IsAdmin returns true if the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.RoleID == RoleAdmin
}
