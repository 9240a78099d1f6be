package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// CreateItemInput captures the fields needed to register a catalog item.
// OpeningQuantity, when positive, seeds the ledger with an initial inflow so
// the derived balance starts at the counted amount.
type CreateItemInput struct {
	CompanyID       uuid.UUID        `json:"company_id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	Unit            string           `json:"unit"`
	CriticalLevel   *int             `json:"critical_level"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	OpeningQuantity int              `json:"opening_quantity"`
	ActorUserID     uuid.UUID        `json:"actor_user_id"`
}

// UpdateItemInput carries the mutable catalog fields. Nil means unchanged.
type UpdateItemInput struct {
	Name          *string          `json:"name"`
	Unit          *string          `json:"unit"`
	CriticalLevel *int             `json:"critical_level"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

// RecordMovementInput captures one ledger append.
type RecordMovementInput struct {
	CompanyID   uuid.UUID               `json:"company_id"`
	StockItemID uuid.UUID               `json:"stock_item_id"`
	Direction   enums.MovementDirection `json:"direction"`
	Quantity    int                     `json:"quantity"`
	UnitPrice   *decimal.Decimal        `json:"unit_price"`
	TicketID    *uuid.UUID              `json:"ticket_id"`
	Reference   *string                 `json:"reference"`
}

// MovementFilters narrows the movement list.
type MovementFilters struct {
	StockItemID *uuid.UUID
	Direction   *enums.MovementDirection
	TicketID    *uuid.UUID
	DateFrom    *time.Time
	DateTo      *time.Time
}

// MovementList wraps a page of movements plus the next cursor.
type MovementList struct {
	Movements  []models.StockMovement `json:"movements"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// ItemBalance pairs a catalog item with its derived balance.
type ItemBalance struct {
	Item   models.StockItem `json:"item"`
	OnHand int              `json:"on_hand"`
	IsLow  bool             `json:"is_low"`
}
