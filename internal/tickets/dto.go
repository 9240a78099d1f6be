package tickets

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// CreateTicketInput captures an intake.
type CreateTicketInput struct {
	CompanyID        uuid.UUID            `json:"company_id"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	DeviceID         uuid.UUID            `json:"device_id"`
	Priority         enums.TicketPriority `json:"priority"`
	FaultDescription string               `json:"fault_description"`
	TechnicianID     *uuid.UUID           `json:"technician_id"`
	ActorUserID      uuid.UUID            `json:"actor_user_id"`
}

// TransitionInput captures one guarded workflow move.
type TransitionInput struct {
	CompanyID   uuid.UUID          `json:"company_id"`
	TicketID    uuid.UUID          `json:"ticket_id"`
	Target      enums.TicketStatus `json:"target"`
	Note        *string            `json:"note"`
	ActorUserID uuid.UUID          `json:"actor_user_id"`
}

// TicketFilters narrows the ticket list.
type TicketFilters struct {
	Status       *enums.TicketStatus
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	DateFrom     *time.Time
	DateTo       *time.Time
}

// TicketList wraps a page of tickets plus the next cursor.
type TicketList struct {
	Tickets    []models.Ticket `json:"tickets"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
