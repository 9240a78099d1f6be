package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Quote is a repair estimate sent to the customer before work begins.
// Preparing one moves the ticket to awaiting_approval.
type Quote struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      uuid.UUID                 `gorm:"column:company_id;type:uuid;not null;index"`
	TicketID       uuid.UUID                 `gorm:"column:ticket_id;type:uuid;not null;index"`
	QuoteNumber    string                    `gorm:"column:quote_number;not null"`
	Repairable     bool                      `gorm:"column:repairable;not null;default:true"`
	RepairDetail   string                    `gorm:"column:repair_detail;not null"`
	Amount         *decimal.Decimal          `gorm:"column:amount;type:numeric(12,2)"`
	TaxRate        *decimal.Decimal          `gorm:"column:tax_rate;type:numeric(5,2)"`
	TaxAmount      *decimal.Decimal          `gorm:"column:tax_amount;type:numeric(12,2)"`
	TotalAmount    *decimal.Decimal          `gorm:"column:total_amount;type:numeric(12,2)"`
	ApprovalStatus enums.QuoteApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
