package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/pkg/enums"
	"github.com/atelierhq/repairops-backend/pkg/types"
)

// Invoice is an immutable billing snapshot. Lines and the customer identity
// are copied by value at issue time; only the payment status may change
// afterward.
type Invoice struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID        uuid.UUID               `gorm:"column:company_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID               `gorm:"column:customer_id;type:uuid;not null"`
	TicketID         *uuid.UUID              `gorm:"column:ticket_id;type:uuid"`
	InvoiceNumber    string                  `gorm:"column:invoice_number;not null"`
	IssueDate        time.Time               `gorm:"column:issue_date;not null"`
	DueDate          *time.Time              `gorm:"column:due_date"`
	CustomerSnapshot types.CustomerSnapshot  `gorm:"column:customer_snapshot;type:jsonb;serializer:json"`
	Lines            types.InvoiceLines      `gorm:"column:lines;type:jsonb;serializer:json"`
	Subtotal         decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxRate          decimal.Decimal         `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	TaxAmount        decimal.Decimal         `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	GrandTotal       decimal.Decimal         `gorm:"column:grand_total;type:numeric(12,2);not null"`
	PaymentStatus    enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Notes            *string                 `gorm:"column:notes"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
