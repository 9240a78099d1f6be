package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// TicketStatusEvent is one immutable entry in a ticket's history trail.
// PreviousStatus is nil only on the creation event. Rows are append-only;
// the trail is the sole source of truth for ticket history.
type TicketStatusEvent struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TicketID       uuid.UUID           `gorm:"column:ticket_id;type:uuid;not null;index"`
	PreviousStatus *enums.TicketStatus `gorm:"column:previous_status;type:text"`
	NewStatus      enums.TicketStatus  `gorm:"column:new_status;type:text;not null"`
	Note           *string             `gorm:"column:note"`
	ActorUserID    uuid.UUID           `gorm:"column:actor_user_id;type:uuid;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}
