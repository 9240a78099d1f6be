package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Service exposes the customer and device registry.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, companyID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Customer, string, error)
	RegisterDevice(ctx context.Context, input RegisterDeviceInput) (*models.Device, error)
	GetDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*models.Device, error)
	ListDevices(ctx context.Context, companyID, customerID uuid.UUID) ([]models.Device, error)
}

// CreateCustomerInput captures a new repair-shop client.
type CreateCustomerInput struct {
	CompanyID uuid.UUID          `json:"company_id"`
	Kind      enums.CustomerKind `json:"kind"`
	Name      string             `json:"name"`
	Phone     *string            `json:"phone"`
	Email     *string            `json:"email"`
	TaxNumber *string            `json:"tax_number"`
}

// RegisterDeviceInput captures a customer-owned unit.
type RegisterDeviceInput struct {
	CompanyID    uuid.UUID `json:"company_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	SerialNumber *string   `json:"serial_number"`
}

type service struct {
	repo Repository
}

// NewService wires a customer service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	kind := input.Kind
	if kind == "" {
		kind = enums.CustomerKindIndividual
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid customer kind %q", kind))
	}

	customer := &models.Customer{
		ID:        uuid.New(),
		CompanyID: input.CompanyID,
		Kind:      kind,
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		TaxNumber: input.TaxNumber,
		Active:    true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, companyID, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.Find(ctx, companyID, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, params pagination.Params) ([]models.Customer, string, error) {
	if companyID == uuid.Nil {
		return nil, "", fmt.Errorf("company id is required")
	}
	return s.repo.List(ctx, companyID, params)
}

func (s *service) RegisterDevice(ctx context.Context, input RegisterDeviceInput) (*models.Device, error) {
	if input.Brand == "" || input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device brand and model are required")
	}
	if _, err := s.Get(ctx, input.CompanyID, input.CustomerID); err != nil {
		return nil, err
	}

	device := &models.Device{
		ID:           uuid.New(),
		CompanyID:    input.CompanyID,
		CustomerID:   input.CustomerID,
		Brand:        input.Brand,
		Model:        input.Model,
		SerialNumber: input.SerialNumber,
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *service) GetDevice(ctx context.Context, companyID, deviceID uuid.UUID) (*models.Device, error) {
	device, err := s.repo.FindDevice(ctx, companyID, deviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (s *service) ListDevices(ctx context.Context, companyID, customerID uuid.UUID) ([]models.Device, error) {
	if _, err := s.Get(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListDevices(ctx, companyID, customerID)
}
