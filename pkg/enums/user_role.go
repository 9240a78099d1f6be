package enums

import "fmt"

// UserRole scopes what a company member may do.
type UserRole string

const (
	UserRoleOwner      UserRole = "owner"
	UserRoleTechnician UserRole = "technician"
	UserRoleFrontDesk  UserRole = "front_desk"
)

var validUserRoles = []UserRole{
	UserRoleOwner,
	UserRoleTechnician,
	UserRoleFrontDesk,
}

func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
