package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// StockMovement is one immutable ledger entry. The current balance of an
// item is the signed sum of its movements; rows are never updated or
// deleted.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID               `gorm:"column:company_id;type:uuid;not null;index"`
	StockItemID uuid.UUID               `gorm:"column:stock_item_id;type:uuid;not null;index"`
	Direction   enums.MovementDirection `gorm:"column:direction;type:text;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	UnitPrice   *decimal.Decimal        `gorm:"column:unit_price;type:numeric(12,2)"`
	TotalAmount *decimal.Decimal        `gorm:"column:total_amount;type:numeric(12,2)"`
	TicketID    *uuid.UUID              `gorm:"column:ticket_id;type:uuid"`
	Reference   *string                 `gorm:"column:reference"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
