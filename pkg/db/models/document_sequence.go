package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// DocumentSequence holds the last issued ordinal per (company, kind,
// period). Increments happen in a single upsert statement so concurrent
// callers can never read the same value.
type DocumentSequence struct {
	CompanyID uuid.UUID          `gorm:"column:company_id;type:uuid;primaryKey"`
	Kind      enums.DocumentKind `gorm:"column:kind;type:text;primaryKey"`
	Period    string             `gorm:"column:period;primaryKey"`
	LastValue int64              `gorm:"column:last_value;not null;default:0"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
