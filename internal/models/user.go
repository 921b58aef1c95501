package models

// Role is the dashboard role of a user.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RolePGAdmin    Role = "pg_admin"
	RoleWarden     Role = "warden"
	RoleGuest      Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RolePGAdmin, RoleWarden, RoleGuest:
		return true
	}
	return false
}

// CanWrite reports whether the role may create or change records.
func (r Role) CanWrite() bool {
	return r.Valid() && r != RoleGuest
}

// User represents a dashboard account: an administrator, a warden or a
// resident guest.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id" sheet:"id" yaml:"id"`

	// Name is the display name of the user.
	Name string `json:"name" sheet:"name" yaml:"name"`

	// Email is the user's email address.
	Email string `json:"email" sheet:"email" yaml:"email"`

	// Role decides what the user may do through the API.
	Role Role `json:"role" sheet:"role" yaml:"role"`

	// AdminSubRole narrows a pg_admin account (e.g. "accounts", "operations").
	AdminSubRole string `json:"adminSubRole" sheet:"adminSubRole" yaml:"adminSubRole"`

	// ProfileImage is a URL to the avatar.
	ProfileImage string `json:"profileImage" sheet:"profileImage" yaml:"profileImage"`

	// RoomNumber is set for guests only.
	RoomNumber string `json:"roomNumber" sheet:"roomNumber" yaml:"roomNumber"`

	// JoinDate and EndDate are ISO dates (YYYY-MM-DD). EndDate is empty while
	// the guest is staying.
	JoinDate string `json:"joinDate" sheet:"joinDate" yaml:"joinDate"`
	EndDate  string `json:"endDate" sheet:"endDate" yaml:"endDate"`
}

// GetID returns the record ID.
func (u *User) GetID() string { return u.ID }

// SetID sets the record ID.
func (u *User) SetID(id string) { u.ID = id }
