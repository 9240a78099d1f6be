package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartConsumption records a part used on a ticket. StockItemID and
// MovementID are nil for manually entered off-catalog parts; when the part
// came from stock, MovementID links the ledger debit that backed it.
// InvoiceID is set once the consumption has been billed.
type PartConsumption struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID        `gorm:"column:company_id;type:uuid;not null;index"`
	TicketID    uuid.UUID        `gorm:"column:ticket_id;type:uuid;not null;index"`
	StockItemID *uuid.UUID       `gorm:"column:stock_item_id;type:uuid"`
	MovementID  *uuid.UUID       `gorm:"column:movement_id;type:uuid"`
	InvoiceID   *uuid.UUID       `gorm:"column:invoice_id;type:uuid;index"`
	PartName    string           `gorm:"column:part_name;not null"`
	Quantity    int              `gorm:"column:quantity;not null"`
	UnitPrice   *decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	TotalPrice  *decimal.Decimal `gorm:"column:total_price;type:numeric(12,2)"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
