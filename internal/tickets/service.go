package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/internal/sequences"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
	"github.com/atelierhq/repairops-backend/pkg/metrics"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

// Service runs the guarded ticket workflow. Status only ever changes through
// Create and Transition, each of which appends exactly one history event in
// the same transaction as the status write.
type Service interface {
	Create(ctx context.Context, input CreateTicketInput) (*models.Ticket, error)
	Get(ctx context.Context, companyID, ticketID uuid.UUID) (*models.Ticket, error)
	// GetTx reads the ticket through the caller's transaction, for status
	// checks that must still hold when that transaction commits.
	GetTx(ctx context.Context, tx *gorm.DB, companyID, ticketID uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, companyID uuid.UUID, filters TicketFilters, params pagination.Params) (*TicketList, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Ticket, error)
	// TransitionTx runs the guarded move inside the caller's transaction,
	// for flows that must change status together with other writes.
	TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*models.Ticket, error)
	AllowedNext(ctx context.Context, companyID, ticketID uuid.UUID) ([]enums.TicketStatus, error)
	History(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.TicketStatusEvent, error)
}

type service struct {
	repo    Repository
	seq     sequences.Service
	client  *db.Client
	metrics *metrics.CoreMetrics
	logg    *logger.Logger
}

// NewService wires a ticket service. Metrics are optional.
func NewService(repo Repository, seq sequences.Service, client *db.Client, coreMetrics *metrics.CoreMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ticket repository required")
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
	return &service{repo: repo, seq: seq, client: client, metrics: coreMetrics, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateTicketInput) (*models.Ticket, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.DeviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	if input.FaultDescription == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fault description is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.TicketPriorityNormal
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", priority))
	}

	now := time.Now()
	ticket := &models.Ticket{
		ID:               uuid.New(),
		CompanyID:        input.CompanyID,
		CustomerID:       input.CustomerID,
		DeviceID:         input.DeviceID,
		Status:           enums.TicketStatusIntake,
		Priority:         priority,
		FaultDescription: input.FaultDescription,
		TechnicianID:     input.TechnicianID,
		IntakeAt:         now,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.seq.Next(ctx, tx, input.CompanyID, enums.DocumentKindTicket, now)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number.Formatted

		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, ticket); err != nil {
			return err
		}

		// Creation is the transition from "no state" into intake; the trail
		// is never empty for an existing ticket.
		event := &models.TicketStatusEvent{
			ID:          uuid.New(),
			TicketID:    ticket.ID,
			NewStatus:   enums.TicketStatusIntake,
			ActorUserID: input.ActorUserID,
		}
		return txRepo.CreateEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(enums.TicketStatusIntake.String())
	s.logg.Info(s.logg.WithField(ctx, "ticket_number", ticket.TicketNumber), "ticket created")
	return ticket, nil
}

func (s *service) Get(ctx context.Context, companyID, ticketID uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.repo.Find(ctx, companyID, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *service) GetTx(ctx context.Context, tx *gorm.DB, companyID, ticketID uuid.UUID) (*models.Ticket, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	ticket, err := s.repo.WithTx(tx).Find(ctx, companyID, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, filters TicketFilters, params pagination.Params) (*TicketList, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.List(ctx, companyID, filters, params)
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.TransitionTx(ctx, tx, input)
		if err != nil {
			return err
		}
		ticket = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *service) TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*models.Ticket, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ticket status %q", input.Target))
	}

	txRepo := s.repo.WithTx(tx)
	ticket, err := txRepo.Find(ctx, input.CompanyID, input.TicketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	if err != nil {
		return nil, err
	}

	current := ticket.Status
	if !CanTransition(current, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move ticket from %s to %s", current, input.Target)).
			WithDetails(map[string]any{
				"current": current,
				"target":  input.Target,
				"allowed": AllowedNext(current),
			})
	}

	extra := map[string]any{}
	var completedAt *time.Time
	if input.Target == enums.TicketStatusCompleted {
		now := time.Now()
		completedAt = &now
		extra["completed_at"] = now
	}

	// Optimistic guard: the UPDATE only lands while the status still equals
	// what we read above. A lost race surfaces instead of overwriting.
	updated, err := txRepo.UpdateStatusIf(ctx, input.CompanyID, input.TicketID, current, input.Target, extra)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConcurrentModification, "ticket status changed concurrently").
			WithDetails(map[string]any{"expected": current})
	}

	previous := current
	event := &models.TicketStatusEvent{
		ID:             uuid.New(),
		TicketID:       ticket.ID,
		PreviousStatus: &previous,
		NewStatus:      input.Target,
		Note:           input.Note,
		ActorUserID:    input.ActorUserID,
	}
	if err := txRepo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	ticket.Status = input.Target
	if completedAt != nil {
		ticket.CompletedAt = completedAt
	}
	s.metrics.IncTransition(input.Target.String())
	return ticket, nil
}

func (s *service) AllowedNext(ctx context.Context, companyID, ticketID uuid.UUID) ([]enums.TicketStatus, error) {
	ticket, err := s.Get(ctx, companyID, ticketID)
	if err != nil {
		return nil, err
	}
	return AllowedNext(ticket.Status), nil
}

func (s *service) History(ctx context.Context, companyID, ticketID uuid.UUID) ([]models.TicketStatusEvent, error) {
	if _, err := s.Get(ctx, companyID, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, ticketID)
}
