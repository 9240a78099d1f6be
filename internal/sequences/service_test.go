package sequences

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

type fakeSequenceRepo struct {
	counters map[string]int64
	err      error
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: map[string]int64{}}
}

func (f *fakeSequenceRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeSequenceRepo) Increment(_ context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := companyID.String() + "|" + kind.String() + "|" + period
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeSequenceRepo) Current(_ context.Context, companyID uuid.UUID, kind enums.DocumentKind, period string) (int64, error) {
	key := companyID.String() + "|" + kind.String() + "|" + period
	return f.counters[key], nil
}

func TestNextFormatsNumber(t *testing.T) {
	t.Parallel()

	repo := newFakeSequenceRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	companyID := uuid.New()
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tx := &gorm.DB{}

	var last *Number
	for i := 0; i < 42; i++ {
		last, err = svc.Next(context.Background(), tx, companyID, enums.DocumentKindTicket, issuedAt)
		require.NoError(t, err)
	}
	require.Equal(t, "SRV-2025-00042", last.Formatted)
	require.Equal(t, int64(42), last.Ordinal)
	require.Equal(t, "2025", last.Period)

	quote, err := svc.Next(context.Background(), tx, companyID, enums.DocumentKindQuote, issuedAt)
	require.NoError(t, err)
	require.Equal(t, "TKL-2025-00001", quote.Formatted)
}

func TestNextValidatesInput(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newFakeSequenceRepo())
	require.NoError(t, err)

	_, err = svc.Next(context.Background(), nil, uuid.New(), enums.DocumentKindTicket, time.Now())
	require.Error(t, err)

	_, err = svc.Next(context.Background(), &gorm.DB{}, uuid.Nil, enums.DocumentKindTicket, time.Now())
	require.Error(t, err)

	_, err = svc.Next(context.Background(), &gorm.DB{}, uuid.New(), enums.DocumentKind("bogus"), time.Now())
	require.Error(t, err)
}

func TestFormatNumberWidensPastPadding(t *testing.T) {
	t.Parallel()

	require.Equal(t, "FAT-2025-00007", FormatNumber(enums.DocumentKindInvoice, "2025", 7))
	require.Equal(t, "FAT-2025-123456", FormatNumber(enums.DocumentKindInvoice, "2025", 123456))
}

func TestPeriodFor(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	// 2025-12-31 23:30 +03 is still 2025 in UTC.
	require.Equal(t, "2025", PeriodFor(time.Date(2025, 12, 31, 23, 30, 0, 0, loc)))
	require.Equal(t, "2026", PeriodFor(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}
