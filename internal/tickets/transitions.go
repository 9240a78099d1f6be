package tickets

import (
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// transitionTable is the single owner of the workflow rules. A status absent
// from the map is terminal.
var transitionTable = map[enums.TicketStatus][]enums.TicketStatus{
	enums.TicketStatusIntake: {
		enums.TicketStatusAwaitingApproval,
		enums.TicketStatusInProgress,
		enums.TicketStatusCancelled,
	},
	enums.TicketStatusAwaitingApproval: {
		enums.TicketStatusApproved,
		enums.TicketStatusCancelled,
	},
	enums.TicketStatusApproved: {
		enums.TicketStatusInProgress,
		enums.TicketStatusCancelled,
	},
	enums.TicketStatusInProgress: {
		enums.TicketStatusCompleted,
		enums.TicketStatusCancelled,
	},
	enums.TicketStatusCompleted: {
		enums.TicketStatusShippedOut,
	},
}

// AllowedNext returns the statuses reachable from the given one. Terminal
// statuses return an empty slice.
func AllowedNext(status enums.TicketStatus) []enums.TicketStatus {
	targets := transitionTable[status]
	out := make([]enums.TicketStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether from → to is a legal workflow move.
// Self-transitions are never legal.
func CanTransition(from, to enums.TicketStatus) bool {
	for _, candidate := range transitionTable[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
