package enums

import "fmt"

// TicketStatus tracks the lifecycle of a repair ticket.
type TicketStatus string

const (
	TicketStatusIntake           TicketStatus = "intake"
	TicketStatusAwaitingApproval TicketStatus = "awaiting_approval"
	TicketStatusApproved         TicketStatus = "approved"
	TicketStatusInProgress       TicketStatus = "in_progress"
	TicketStatusCompleted        TicketStatus = "completed"
	TicketStatusShippedOut       TicketStatus = "shipped_out"
	TicketStatusCancelled        TicketStatus = "cancelled"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusIntake,
	TicketStatusAwaitingApproval,
	TicketStatusApproved,
	TicketStatusInProgress,
	TicketStatusCompleted,
	TicketStatusShippedOut,
	TicketStatusCancelled,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from the status.
func (t TicketStatus) IsTerminal() bool {
	return t == TicketStatusShippedOut || t == TicketStatusCancelled
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
