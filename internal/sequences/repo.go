package sequences

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// Repository manages persistence for document sequence counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error)
	Current(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sequence repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Increment bumps the counter for (company, kind, period) in a single upsert
// statement and returns the new value. Because the read and the write happen
// in one statement, two concurrent callers can never observe the same value.
func (r *repository) Increment(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (company_id, kind, period, last_value, updated_at)
		VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (company_id, kind, period)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING last_value`,
		companyID, kind.String(), period,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *repository) Current(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error) {
	var seq models.DocumentSequence
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND kind = ? AND period = ?", companyID, kind.String(), period).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
