package sequences

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
)

// Service allocates gapless-per-period document numbers.
type Service interface {
	// Next reserves the next ordinal for (company, kind, period) and returns
	// the formatted number. It must run inside the caller's transaction so a
	// rolled-back document never burns a visible number on its own row.
	Next(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, kind enums.DocumentKind, issuedAt time.Time) (*Number, error)
	Current(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error)
}

// Number is one allocated document number.
type Number struct {
	Kind      enums.DocumentKind `json:"kind"`
	Period    string             `json:"period"`
	Ordinal   int64              `json:"ordinal"`
	Formatted string             `json:"formatted"`
}

type service struct {
	repo Repository
}

// NewService wires a sequence service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &service{repo: repo}, nil
}

// PeriodFor returns the numbering period a document issued at t falls into.
// Counters reset when the period changes, so numbering restarts every year.
func PeriodFor(t time.Time) string {
	return t.UTC().Format("2006")
}

// FormatNumber renders "{PREFIX}-{period}-{ordinal}" with the ordinal padded
// to five digits. Ordinals past 99999 widen naturally.
func FormatNumber(kind enums.DocumentKind, period string, ordinal int64) string {
	return fmt.Sprintf("%s-%s-%05d", kind.Prefix(), period, ordinal)
}

func (s *service) Next(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, kind enums.DocumentKind, issuedAt time.Time) (*Number, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid document kind %q", kind)
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	period := PeriodFor(issuedAt)
	ordinal, err := s.repo.WithTx(tx).Increment(ctx, companyID, kind, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing document sequence")
	}
	if ordinal <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sequence returned non-positive ordinal")
	}

	return &Number{
		Kind:      kind,
		Period:    period,
		Ordinal:   ordinal,
		Formatted: FormatNumber(kind, period, ordinal),
	}, nil
}

func (s *service) Current(ctx context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	if !kind.IsValid() {
		return 0, fmt.Errorf("invalid document kind %q", kind)
	}
	return s.repo.Current(ctx, companyID, kind, period)
}
