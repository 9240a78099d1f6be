package parts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/internal/inventory"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

// Service coordinates part usage on tickets. Stock-backed parts debit the
// movement ledger and record the consumption in one transaction; a failed
// debit leaves no consumption behind. Manual parts skip the ledger.
type Service interface {
	ConsumePart(ctx context.Context, input ConsumePartInput) (*models.PartConsumption, error)
	ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error)
}

// ConsumePartInput captures one part usage. StockItemID nil means a manual,
// off-catalog part; PartName is then required.
type ConsumePartInput struct {
	CompanyID   uuid.UUID        `json:"company_id"`
	TicketID    uuid.UUID        `json:"ticket_id"`
	StockItemID *uuid.UUID       `json:"stock_item_id"`
	PartName    string           `json:"part_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type service struct {
	repo      Repository
	ticketSvc tickets.Service
	invSvc    inventory.Service
	client    *db.Client
	logg      *logger.Logger
}

// NewService wires a part consumption service.
func NewService(repo Repository, ticketSvc tickets.Service, invSvc inventory.Service, client *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consumption repository required")
	}
	if ticketSvc == nil {
		return nil, fmt.Errorf("ticket service required")
	}
	if invSvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, ticketSvc: ticketSvc, invSvc: invSvc, client: client, logg: logg}, nil
}

func (s *service) ConsumePart(ctx context.Context, input ConsumePartInput) (*models.PartConsumption, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.TicketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.StockItemID == nil && input.PartName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part name is required for manual parts")
	}

	consumption := &models.PartConsumption{
		ID:          uuid.New(),
		CompanyID:   input.CompanyID,
		TicketID:    input.TicketID,
		StockItemID: input.StockItemID,
		PartName:    input.PartName,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		// The terminal check rides the same transaction as the debit so a
		// concurrent transition to shipped_out or cancelled cannot slip a
		// consumption onto a closed ticket.
		ticket, err := s.ticketSvc.GetTx(ctx, tx, input.CompanyID, input.TicketID)
		if err != nil {
			return err
		}
		if ticket.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot consume parts on a %s ticket", ticket.Status)).
				WithDetails(map[string]any{"status": ticket.Status})
		}

		if input.StockItemID != nil {
			item, err := s.invSvc.GetItem(ctx, input.CompanyID, *input.StockItemID)
			if err != nil {
				return err
			}
			if consumption.PartName == "" {
				consumption.PartName = item.Name
			}
			if consumption.UnitPrice == nil {
				consumption.UnitPrice = item.SalePrice
			}

			movement, err := s.invSvc.RecordMovementTx(ctx, tx, inventory.RecordMovementInput{
				CompanyID:   input.CompanyID,
				StockItemID: *input.StockItemID,
				Direction:   enums.MovementDirectionOut,
				Quantity:    input.Quantity,
				UnitPrice:   consumption.UnitPrice,
				TicketID:    &input.TicketID,
			})
			if err != nil {
				return err
			}
			consumption.MovementID = &movement.ID
		}

		if consumption.UnitPrice != nil {
			total := consumption.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
			consumption.TotalPrice = &total
		}
		return s.repo.WithTx(tx).Create(ctx, consumption)
	})
	if err != nil {
		return nil, err
	}

	if input.StockItemID != nil {
		s.invSvc.InvalidateBalance(ctx, input.CompanyID, *input.StockItemID)
	}
	return consumption, nil
}

func (s *service) ListByTicket(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.PartConsumption, error) {
	if _, err := s.ticketSvc.Get(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListByTicket(ctx, companyID, ticketID)
}
