package tickets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Repository manages persistence for tickets and their history trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.Ticket) error
	CreateEvent(ctx context.Context, event *models.TicketStatusEvent) error
	Find(ctx context.Context, companyID, ticketID uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, companyID uuid.UUID, filters TicketFilters, params pagination.Params) (*TicketList, error)
	ListEvents(ctx context.Context, ticketID uuid.UUID) ([]models.TicketStatusEvent, error)
	// UpdateStatusIf flips the status only while it still equals from; a
	// false return means another writer got there first.
	UpdateStatusIf(ctx context.Context, companyID, ticketID uuid.UUID, from, to enums.TicketStatus, extra map[string]any) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ticket repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) CreateEvent(ctx context.Context, event *models.TicketStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) Find(ctx context.Context, companyID, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, ticketID).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, filters TicketFilters, params pagination.Params) (*TicketList, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filters.Status != nil {
		query = query.Where("status = ?", filters.Status.String())
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filters.TechnicianID)
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

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &TicketList{Tickets: tickets}
	if len(tickets) > limit {
		list.Tickets = tickets[:limit]
		last := list.Tickets[len(list.Tickets)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) ListEvents(ctx context.Context, ticketID uuid.UUID) ([]models.TicketStatusEvent, error) {
	var events []models.TicketStatusEvent
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, companyID, ticketID uuid.UUID, from, to enums.TicketStatus, extra map[string]any) (bool, error) {
	updates := map[string]any{"status": to.String()}
	for key, value := range extra {
		updates[key] = value
	}
	result := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("company_id = ? AND id = ? AND status = ?", companyID, ticketID, from.String()).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
