package enums

import "fmt"

// CustomerKind separates individual walk-in customers from corporate accounts.
type CustomerKind string

const (
	CustomerKindIndividual CustomerKind = "individual"
	CustomerKindCorporate  CustomerKind = "corporate"
)

func (c CustomerKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CustomerKind.
func (c CustomerKind) IsValid() bool {
	return c == CustomerKindIndividual || c == CustomerKindCorporate
}

// ParseCustomerKind converts raw input into a CustomerKind.
func ParseCustomerKind(value string) (CustomerKind, error) {
	switch CustomerKind(value) {
	case CustomerKindIndividual:
		return CustomerKindIndividual, nil
	case CustomerKindCorporate:
		return CustomerKindCorporate, nil
	}
	return "", fmt.Errorf("invalid customer kind %q", value)
}
