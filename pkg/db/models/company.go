package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Company is the tenant boundary; every other row is scoped to one.
// Provisioning and approval happen outside this service.
type Company struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string              `gorm:"column:code;not null;uniqueIndex"`
	Name      string              `gorm:"column:name;not null"`
	Email     string              `gorm:"column:email;not null"`
	Status    enums.CompanyStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
