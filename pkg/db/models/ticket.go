package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Ticket is a repair job moving through the guarded workflow. Status is only
// ever written through a workflow transition, never directly.
type Ticket struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID        uuid.UUID            `gorm:"column:company_id;type:uuid;not null;index"`
	TicketNumber     string               `gorm:"column:ticket_number;not null"`
	CustomerID       uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	DeviceID         uuid.UUID            `gorm:"column:device_id;type:uuid;not null"`
	Status           enums.TicketStatus   `gorm:"column:status;type:text;not null;default:'intake'"`
	Priority         enums.TicketPriority `gorm:"column:priority;type:text;not null;default:'normal'"`
	FaultDescription string               `gorm:"column:fault_description;not null"`
	TechnicianID     *uuid.UUID           `gorm:"column:technician_id;type:uuid"`
	InvoiceID        *uuid.UUID           `gorm:"column:invoice_id;type:uuid"`
	IntakeAt         time.Time            `gorm:"column:intake_at;not null"`
	CompletedAt      *time.Time           `gorm:"column:completed_at"`
	Events           []TicketStatusEvent  `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
