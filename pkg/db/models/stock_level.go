package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the derived per-item balance snapshot. It is maintained in
// the same transaction as every movement and can always be rebuilt from the
// ledger; the ledger stays authoritative.
type StockLevel struct {
	CompanyID   uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey"`
	StockItemID uuid.UUID `gorm:"column:stock_item_id;type:uuid;primaryKey"`
	OnHand      int       `gorm:"column:on_hand;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
