package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
	"github.com/atelierhq/repairops-backend/pkg/metrics"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
	"github.com/atelierhq/repairops-backend/pkg/redis"
)

// Service exposes the stock catalog and the append-only movement ledger.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error)
	GetItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.StockItem, error)
	ListItems(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.StockItem, string, error)
	UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*models.StockItem, error)

	// RecordMovement appends one ledger entry and maintains the level
	// snapshot in the same transaction. Outflows that would drive the
	// balance negative are rejected with an insufficient-stock error and
	// nothing is written.
	RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	// RecordMovementTx is RecordMovement running inside the caller's
	// transaction; used when a movement must commit or roll back together
	// with other writes. Cache invalidation stays with the caller.
	RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)

	CurrentBalance(ctx context.Context, companyID, itemID uuid.UUID) (int, error)
	LedgerBalance(ctx context.Context, companyID, itemID uuid.UUID) (int, error)
	RebuildLevel(ctx context.Context, companyID, itemID uuid.UUID) (int, error)
	IsCritical(ctx context.Context, companyID, itemID uuid.UUID) (bool, error)
	ListCritical(ctx context.Context, companyID uuid.UUID) ([]ItemBalance, error)
	ListMovements(ctx context.Context, companyID uuid.UUID, filters MovementFilters, params pagination.Params) (*MovementList, error)
	InvalidateBalance(ctx context.Context, companyID, itemID uuid.UUID)
}

// BalanceCache is the read-through cache surface; satisfied by pkg/redis.
type BalanceCache interface {
	GetBalance(ctx context.Context, key string) (int, error)
	SetBalance(ctx context.Context, key string, balance int) error
	InvalidateBalance(ctx context.Context, keys ...string) error
}

type service struct {
	repo    Repository
	client  *db.Client
	cache   BalanceCache
	metrics *metrics.CoreMetrics
	logg    *logger.Logger
}

// NewService wires an inventory service. The cache and metrics are optional.
func NewService(repo Repository, client *db.Client, cache BalanceCache, coreMetrics *metrics.CoreMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, client: client, cache: cache, metrics: coreMetrics, logg: logg}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.OpeningQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening quantity cannot be negative")
	}

	item := &models.StockItem{
		CompanyID:     input.CompanyID,
		Code:          input.Code,
		Name:          input.Name,
		Unit:          "pcs",
		CriticalLevel: 5,
		PurchasePrice: input.PurchasePrice,
		SalePrice:     input.SalePrice,
	}
	if input.Unit != "" {
		item.Unit = input.Unit
	}
	if input.CriticalLevel != nil {
		item.CriticalLevel = *input.CriticalLevel
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateItem(ctx, item); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "item code already exists")
			}
			return err
		}
		if input.OpeningQuantity == 0 {
			return nil
		}
		reference := "opening stock"
		movement := RecordMovementInput{
			CompanyID:   input.CompanyID,
			StockItemID: item.ID,
			Direction:   enums.MovementDirectionIn,
			Quantity:    input.OpeningQuantity,
			UnitPrice:   input.PurchasePrice,
			Reference:   &reference,
		}
		_, err := s.RecordMovementTx(ctx, tx, movement)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.StockItem, error) {
	item, err := s.repo.FindItem(ctx, companyID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.StockItem, string, error) {
	if companyID == uuid.Nil {
		return nil, "", fmt.Errorf("company id is required")
	}
	return s.repo.ListItems(ctx, companyID, params)
}

func (s *service) UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*models.StockItem, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.CriticalLevel != nil {
		if *input.CriticalLevel < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "critical level cannot be negative")
		}
		updates["critical_level"] = *input.CriticalLevel
	}
	if input.PurchasePrice != nil {
		updates["purchase_price"] = *input.PurchasePrice
	}
	if input.SalePrice != nil {
		updates["sale_price"] = *input.SalePrice
	}

	err := s.repo.UpdateItem(ctx, companyID, itemID, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
	}
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, companyID, itemID)
}

func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.RecordMovementTx(ctx, tx, input)
		if err != nil {
			return err
		}
		movement = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateBalance(ctx, input.CompanyID, input.StockItemID)
	return movement, nil
}

func (s *service) RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.StockItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id is required")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement direction %q", input.Direction))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	txRepo := s.repo.WithTx(tx)
	if _, err := txRepo.FindItem(ctx, input.CompanyID, input.StockItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, err
	}

	movement := &models.StockMovement{
		ID:          uuid.New(),
		CompanyID:   input.CompanyID,
		StockItemID: input.StockItemID,
		Direction:   input.Direction,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		TicketID:    input.TicketID,
		Reference:   input.Reference,
	}
	if input.UnitPrice != nil {
		total := input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
		movement.TotalAmount = &total
	}

	switch input.Direction {
	case enums.MovementDirectionIn:
		if err := txRepo.CreditLevel(ctx, input.CompanyID, input.StockItemID, input.Quantity); err != nil {
			return nil, err
		}
	case enums.MovementDirectionOut:
		debited, err := txRepo.DebitLevel(ctx, input.CompanyID, input.StockItemID, input.Quantity)
		if err != nil {
			return nil, err
		}
		if !debited {
			available, err := txRepo.GetLevel(ctx, input.CompanyID, input.StockItemID)
			if err != nil {
				return nil, err
			}
			s.metrics.IncInsufficientStock()
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock on hand").
				WithDetails(map[string]any{
					"stock_item_id": input.StockItemID,
					"requested":     input.Quantity,
					"available":     available,
				})
		}
	}

	if err := txRepo.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}
	s.metrics.IncMovement(input.Direction.String())
	return movement, nil
}

// CurrentBalance reads the level snapshot, going through the cache when one
// is configured. Cache failures fall back to the database.
func (s *service) CurrentBalance(ctx context.Context, companyID, itemID uuid.UUID) (int, error) {
	if companyID == uuid.Nil || itemID == uuid.Nil {
		return 0, fmt.Errorf("company and item ids are required")
	}

	key := redis.BalanceKey(companyID.String(), itemID.String())
	if s.cache != nil {
		if cached, err := s.cache.GetBalance(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(ctx, fmt.Sprintf("balance cache read failed: %v", err))
		}
	}

	onHand, err := s.repo.GetLevel(ctx, companyID, itemID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetBalance(ctx, key, onHand); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("balance cache write failed: %v", err))
		}
	}
	return onHand, nil
}

// LedgerBalance replays the movement ledger; this is the authoritative value.
func (s *service) LedgerBalance(ctx context.Context, companyID, itemID uuid.UUID) (int, error) {
	return s.repo.SumMovements(ctx, companyID, itemID)
}

// RebuildLevel recomputes the snapshot from the ledger and overwrites the
// stock_levels row. Used when the snapshot is suspected to have drifted.
func (s *service) RebuildLevel(ctx context.Context, companyID, itemID uuid.UUID) (int, error) {
	balance, err := s.repo.SumMovements(ctx, companyID, itemID)
	if err != nil {
		return 0, err
	}
	if err := s.repo.SetLevel(ctx, companyID, itemID, balance); err != nil {
		return 0, err
	}
	s.InvalidateBalance(ctx, companyID, itemID)
	return balance, nil
}

func (s *service) IsCritical(ctx context.Context, companyID, itemID uuid.UUID) (bool, error) {
	item, err := s.GetItem(ctx, companyID, itemID)
	if err != nil {
		return false, err
	}
	onHand, err := s.repo.GetLevel(ctx, companyID, itemID)
	if err != nil {
		return false, err
	}
	return onHand <= item.CriticalLevel, nil
}

func (s *service) ListCritical(ctx context.Context, companyID uuid.UUID) ([]ItemBalance, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListLowLevels(ctx, companyID)
}

func (s *service) ListMovements(ctx context.Context, companyID uuid.UUID, filters MovementFilters, params pagination.Params) (*MovementList, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.ListMovements(ctx, companyID, filters, params)
}

// InvalidateBalance drops the cached balance after a committed ledger write.
func (s *service) InvalidateBalance(ctx context.Context, companyID, itemID uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := redis.BalanceKey(companyID.String(), itemID.String())
	if err := s.cache.InvalidateBalance(ctx, key); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("balance cache invalidation failed: %v", err))
	}
}
