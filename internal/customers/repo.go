package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Repository manages persistence for customers and their devices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	Find(ctx context.Context, companyID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Customer, string, error)
	CreateDevice(ctx context.Context, device *models.Device) error
	FindDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*models.Device, error)
	ListDevices(ctx context.Context, companyID, customerID uuid.UUID) ([]models.Device, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Find(ctx context.Context, companyID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Customer, string, error) {
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

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(customers) > limit {
		customers = customers[:limit]
		last := customers[len(customers)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return customers, next, nil
}

func (r *repository) CreateDevice(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

func (r *repository) FindDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, deviceID).
		First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *repository) ListDevices(ctx context.Context, companyID, customerID uuid.UUID) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND customer_id = ?", companyID, customerID).
		Order("created_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}
