package enums

import "fmt"

// Role represents an account role. The wire values match the tags the
// legacy clients already store ("User", "DoctorUser", "AdminUser").
type Role string

const (
	RolePatient Role = "User"
	RoleDoctor  Role = "DoctorUser"
	RoleAdmin   Role = "AdminUser"
)

var validRoles = []Role{
	RolePatient,
	RoleDoctor,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
