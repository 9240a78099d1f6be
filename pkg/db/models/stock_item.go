package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is a catalog entry. Its quantity is never stored here; the
// balance is derived from the movement ledger.
type StockItem struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID     uuid.UUID        `gorm:"column:company_id;type:uuid;not null;index"`
	Code          string           `gorm:"column:code;not null"`
	Name          string           `gorm:"column:name;not null"`
	Unit          string           `gorm:"column:unit;not null;default:'pcs'"`
	CriticalLevel int              `gorm:"column:critical_level;not null;default:5"`
	PurchasePrice *decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	SalePrice     *decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
