package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/internal/sequences"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/pkg/config"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

// Service handles repair quotes. Preparing a quote moves its ticket to
// awaiting_approval in the same transaction; the customer's decision then
// moves it to approved or cancelled.
type Service interface {
	Prepare(ctx context.Context, input PrepareInput) (*models.Quote, error)
	Decide(ctx context.Context, input DecisionInput) (*models.Quote, error)
	Get(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error)
	ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.Quote, error)
}

// PrepareInput captures a new quote for a ticket.
type PrepareInput struct {
	CompanyID    uuid.UUID        `json:"company_id"`
	TicketID     uuid.UUID        `json:"ticket_id"`
	Repairable   bool             `json:"repairable"`
	RepairDetail string           `json:"repair_detail"`
	Amount       *decimal.Decimal `json:"amount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ActorUserID  uuid.UUID        `json:"actor_user_id"`
}

// DecisionInput records the customer's answer to a pending quote.
type DecisionInput struct {
	CompanyID   uuid.UUID `json:"company_id"`
	QuoteID     uuid.UUID `json:"quote_id"`
	Approved    bool      `json:"approved"`
	Note        *string   `json:"note"`
	ActorUserID uuid.UUID `json:"actor_user_id"`
}

type service struct {
	repo      Repository
	ticketSvc tickets.Service
	seq       sequences.Service
	client    *db.Client
	taxRate   decimal.Decimal
	logg      *logger.Logger
}

// NewService wires a quote service.
func NewService(repo Repository, ticketSvc tickets.Service, seq sequences.Service, client *db.Client, billing config.BillingConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if ticketSvc == nil {
		return nil, fmt.Errorf("ticket service required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence service required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	taxRate, err := decimal.NewFromString(billing.DefaultTaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid default tax rate %q: %w", billing.DefaultTaxRate, err)
	}
	return &service{repo: repo, ticketSvc: ticketSvc, seq: seq, client: client, taxRate: taxRate, logg: logg}, nil
}

func (s *service) Prepare(ctx context.Context, input PrepareInput) (*models.Quote, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.RepairDetail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair detail is required")
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	taxRate := s.taxRate
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
		}
		taxRate = *input.TaxRate
	}

	now := time.Now()
	quote := &models.Quote{
		ID:             uuid.New(),
		CompanyID:      input.CompanyID,
		TicketID:       input.TicketID,
		Repairable:     input.Repairable,
		RepairDetail:   input.RepairDetail,
		ApprovalStatus: enums.QuoteApprovalStatusPending,
	}
	if input.Amount != nil {
		taxAmount := input.Amount.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
		total := input.Amount.Add(taxAmount)
		quote.Amount = input.Amount
		quote.TaxRate = &taxRate
		quote.TaxAmount = &taxAmount
		quote.TotalAmount = &total
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.seq.Next(ctx, tx, input.CompanyID, enums.DocumentKindQuote, now)
		if err != nil {
			return err
		}
		quote.QuoteNumber = number.Formatted

		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return err
		}

		// The ticket waits on the customer from here on.
		note := fmt.Sprintf("quote %s prepared", quote.QuoteNumber)
		_, err = s.ticketSvc.TransitionTx(ctx, tx, tickets.TransitionInput{
			CompanyID:   input.CompanyID,
			TicketID:    input.TicketID,
			Target:      enums.TicketStatusAwaitingApproval,
			Note:        &note,
			ActorUserID: input.ActorUserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) Decide(ctx context.Context, input DecisionInput) (*models.Quote, error) {
	quote, err := s.Get(ctx, input.CompanyID, input.QuoteID)
	if err != nil {
		return nil, err
	}
	if quote.ApprovalStatus != enums.QuoteApprovalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote has already been decided").
			WithDetails(map[string]any{"approval_status": quote.ApprovalStatus})
	}

	target := enums.TicketStatusApproved
	approval := enums.QuoteApprovalStatusApproved
	if !input.Approved {
		target = enums.TicketStatusCancelled
		approval = enums.QuoteApprovalStatusRejected
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		decided, err := s.repo.WithTx(tx).UpdateApprovalIf(ctx, input.CompanyID, input.QuoteID, approval)
		if err != nil {
			return err
		}
		if !decided {
			return pkgerrors.New(pkgerrors.CodeConcurrentModification, "quote was decided concurrently")
		}

		note := fmt.Sprintf("quote %s %s", quote.QuoteNumber, approval)
		_, err = s.ticketSvc.TransitionTx(ctx, tx, tickets.TransitionInput{
			CompanyID:   input.CompanyID,
			TicketID:    quote.TicketID,
			Target:      target,
			Note:        &note,
			ActorUserID: input.ActorUserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	quote.ApprovalStatus = approval
	return quote, nil
}

func (s *service) Get(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.Find(ctx, companyID, quoteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.Quote, error) {
	if _, err := s.ticketSvc.Get(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListByTicket(ctx, companyID, ticketID)
}
