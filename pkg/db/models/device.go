package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is the customer-owned unit a ticket is opened for.
type Device struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID    uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Brand        string    `gorm:"column:brand;not null"`
	Model        string    `gorm:"column:model;not null"`
	SerialNumber *string   `gorm:"column:serial_number"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
