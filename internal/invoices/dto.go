package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// ManualLine is a caller-supplied line item not backed by a consumption.
type ManualLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ComposeInput captures one invoice composition. TicketID nil composes a
// ticket-less invoice from manual lines only; CustomerID is then required.
type ComposeInput struct {
	CompanyID   uuid.UUID        `json:"company_id"`
	TicketID    *uuid.UUID       `json:"ticket_id"`
	CustomerID  *uuid.UUID       `json:"customer_id"`
	ManualLines []ManualLine     `json:"manual_lines"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	DueDate     *time.Time       `json:"due_date"`
	Notes       *string          `json:"notes"`
}

// InvoiceFilters narrows the invoice list.
type InvoiceFilters struct {
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// InvoiceList wraps a page of invoices plus the next cursor.
type InvoiceList struct {
	Invoices   []models.Invoice `json:"invoices"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
