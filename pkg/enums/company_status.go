package enums

import "fmt"

// CompanyStatus reflects whether a tenant may use the platform.
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

func (c CompanyStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CompanyStatus.
func (c CompanyStatus) IsValid() bool {
	return c == CompanyStatusActive || c == CompanyStatusSuspended
}

// ParseCompanyStatus converts raw input into a CompanyStatus.
func ParseCompanyStatus(value string) (CompanyStatus, error) {
	switch CompanyStatus(value) {
	case CompanyStatusActive:
		return CompanyStatusActive, nil
	case CompanyStatusSuspended:
		return CompanyStatusSuspended, nil
	}
	return "", fmt.Errorf("invalid company status %q", value)
}
