package parts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
)

// Repository manages persistence for part consumptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, consumption *models.PartConsumption) error
	ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error)
	ListUninvoiced(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error)
	// MarkInvoiced claims only still-unbilled rows and reports how many it
	// got; a short count means another invoice won some of them.
	MarkInvoiced(ctx context.Context, consumptionIDs []uuid.UUID, invoiceID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a consumption repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, consumption *models.PartConsumption) error {
	return r.db.WithContext(ctx).Create(consumption).Error
}

func (r *repository) ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error) {
	var consumptions []models.PartConsumption
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND ticket_id = ?", companyID, ticketID).
		Order("created_at ASC, id ASC").
		Find(&consumptions).Error
	if err != nil {
		return nil, err
	}
	return consumptions, nil
}

func (r *repository) ListUninvoiced(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error) {
	var consumptions []models.PartConsumption
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND ticket_id = ? AND invoice_id IS NULL", companyID, ticketID).
		Order("created_at ASC, id ASC").
		Find(&consumptions).Error
	if err != nil {
		return nil, err
	}
	return consumptions, nil
}

func (r *repository) MarkInvoiced(ctx context.Context, consumptionIDs []uuid.UUID, invoiceID uuid.UUID) (int64, error) {
	if len(consumptionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.PartConsumption{}).
		Where("id IN ? AND invoice_id IS NULL", consumptionIDs).
		Update("invoice_id", invoiceID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
