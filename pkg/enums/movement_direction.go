package enums

import "fmt"

// MovementDirection distinguishes stock inflows from outflows.
type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "in"
	MovementDirectionOut MovementDirection = "out"
)

func (m MovementDirection) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementDirection.
func (m MovementDirection) IsValid() bool {
	return m == MovementDirectionIn || m == MovementDirectionOut
}

// Sign returns +1 for inflows and -1 for outflows.
func (m MovementDirection) Sign() int {
	if m == MovementDirectionOut {
		return -1
	}
	return 1
}

// ParseMovementDirection converts raw input into a MovementDirection.
func ParseMovementDirection(value string) (MovementDirection, error) {
	switch MovementDirection(value) {
	case MovementDirectionIn:
		return MovementDirectionIn, nil
	case MovementDirectionOut:
		return MovementDirectionOut, nil
	}
	return "", fmt.Errorf("invalid movement direction %q", value)
}
