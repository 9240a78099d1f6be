package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Customer is a repair-shop client, individual or corporate.
type Customer struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID          `gorm:"column:company_id;type:uuid;not null;index"`
	Kind      enums.CustomerKind `gorm:"column:kind;type:text;not null;default:'individual'"`
	Name      string             `gorm:"column:name;not null"`
	Phone     *string            `gorm:"column:phone"`
	Email     *string            `gorm:"column:email"`
	TaxNumber *string            `gorm:"column:tax_number"`
	Active    bool               `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
