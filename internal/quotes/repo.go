package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Repository manages persistence for repair quotes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) error
	Find(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error)
	ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.Quote, error)
	// UpdateApprovalIf records the decision only while the quote is still
	// pending; a false return means it was already decided.
	UpdateApprovalIf(ctx context.Context, companyID, quoteID uuid.UUID, status enums.QuoteApprovalStatus) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quote repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) Find(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, quoteID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND ticket_id = ?", companyID, ticketID).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repository) UpdateApprovalIf(ctx context.Context, companyID, quoteID uuid.UUID, status enums.QuoteApprovalStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("company_id = ? AND id = ? AND approval_status = ?", companyID, quoteID, enums.QuoteApprovalStatusPending.String()).
		Update("approval_status", status.String())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
