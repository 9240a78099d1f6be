package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Repository manages persistence for catalog items, the movement ledger, and
// the derived level snapshot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.StockItem) error
	FindItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.StockItem, error)
	FindItemByCode(ctx context.Context, companyID uuid.UUID, code string) (*models.StockItem, error)
	ListItems(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.StockItem, string, error)
	UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, updates map[string]any) error

	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, companyID uuid.UUID, filters MovementFilters, params pagination.Params) (*MovementList, error)
	SumMovements(ctx context.Context, companyID, itemID uuid.UUID) (int, error)

	GetLevel(ctx context.Context, companyID, itemID uuid.UUID) (int, error)
	CreditLevel(ctx context.Context, companyID, itemID uuid.UUID, qty int) error
	DebitLevel(ctx context.Context, companyID, itemID uuid.UUID, qty int) (bool, error)
	SetLevel(ctx context.Context, companyID, itemID uuid.UUID, onHand int) error
	ListLowLevels(ctx context.Context, companyID uuid.UUID) ([]ItemBalance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByCode(ctx context.Context, companyID uuid.UUID, code string) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.StockItem, string, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.StockItem
	if err := query.Find(&items).Error; err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return items, next, nil
}

func (r *repository) UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("company_id = ? AND id = ?", companyID, itemID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, companyID uuid.UUID, filters MovementFilters, params pagination.Params) (*MovementList, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.StockItemID != nil {
		query = query.Where("stock_item_id = ?", *filters.StockItemID)
	}
	if filters.Direction != nil {
		query = query.Where("direction = ?", filters.Direction.String())
	}
	if filters.TicketID != nil {
		query = query.Where("ticket_id = ?", *filters.TicketID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var movements []models.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &MovementList{Movements: movements}
	if len(movements) > limit {
		list.Movements = movements[:limit]
		last := list.Movements[len(list.Movements)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

// SumMovements replays the ledger for one item. This is the authoritative
// balance; the stock_levels row is only a snapshot of it.
func (r *repository) SumMovements(ctx context.Context, companyID, itemID uuid.UUID) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements
		WHERE company_id = ? AND stock_item_id = ?`,
		companyID, itemID,
	).Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repository) GetLevel(ctx context.Context, companyID, itemID uuid.UUID) (int, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND stock_item_id = ?", companyID, itemID).
		First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.OnHand, nil
}

// CreditLevel adds qty to the snapshot, creating the row on first inflow.
func (r *repository) CreditLevel(ctx context.Context, companyID, itemID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO stock_levels (company_id, stock_item_id, on_hand, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (company_id, stock_item_id)
		DO UPDATE SET on_hand = stock_levels.on_hand + ?, updated_at = CURRENT_TIMESTAMP`,
		companyID, itemID, qty, qty,
	).Error
}

// DebitLevel subtracts qty only when enough stock is on hand. The guard in
// the WHERE clause makes the check-and-decrement a single atomic statement;
// a false return means the balance was too low.
func (r *repository) DebitLevel(ctx context.Context, companyID, itemID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE stock_levels
		SET on_hand = on_hand - ?, updated_at = CURRENT_TIMESTAMP
		WHERE company_id = ? AND stock_item_id = ? AND on_hand >= ?`,
		qty, companyID, itemID, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetLevel(ctx context.Context, companyID, itemID uuid.UUID, onHand int) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO stock_levels (company_id, stock_item_id, on_hand, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (company_id, stock_item_id)
		DO UPDATE SET on_hand = ?, updated_at = CURRENT_TIMESTAMP`,
		companyID, itemID, onHand, onHand,
	).Error
}

func (r *repository) ListLowLevels(ctx context.Context, companyID uuid.UUID) ([]ItemBalance, error) {
	var rows []struct {
		models.StockItem
		OnHand int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT si.*, COALESCE(sl.on_hand, 0) AS on_hand
		FROM stock_items si
		LEFT JOIN stock_levels sl
		  ON sl.company_id = si.company_id AND sl.stock_item_id = si.id
		WHERE si.company_id = ? AND COALESCE(sl.on_hand, 0) <= si.critical_level
		ORDER BY si.name ASC`,
		companyID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := make([]ItemBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, ItemBalance{Item: row.StockItem, OnHand: row.OnHand, IsLow: true})
	}
	return balances, nil
}
