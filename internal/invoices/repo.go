package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Repository manages persistence for invoices. Invoice rows are written once
// at composition time; only the payment status column may be updated later.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	Find(ctx context.Context, companyID, invoiceID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, filters InvoiceFilters, params pagination.Params) (*InvoiceList, error)
	UpdatePaymentStatus(ctx context.Context, companyID, invoiceID uuid.UUID, status enums.PaymentStatus) (bool, error)
	SetTicketInvoice(ctx context.Context, companyID, ticketID, invoiceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) Find(ctx context.Context, companyID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, filters InvoiceFilters, params pagination.Params) (*InvoiceList, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", filters.PaymentStatus.String())
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.DateFrom != nil {
		query = query.Where("issue_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("issue_date <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &InvoiceList{Invoices: invoices}
	if len(invoices) > limit {
		list.Invoices = invoices[:limit]
		last := list.Invoices[len(list.Invoices)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, companyID, invoiceID uuid.UUID, status enums.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("company_id = ? AND id = ?", companyID, invoiceID).
		Update("payment_status", status.String())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetTicketInvoice(ctx context.Context, companyID, ticketID, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("company_id = ? AND id = ?", companyID, ticketID).
		Update("invoice_id", invoiceID).Error
}
