package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/repairops-backend/internal/customers"
	"github.com/atelierhq/repairops-backend/internal/parts"
	"github.com/atelierhq/repairops-backend/internal/sequences"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/pkg/config"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/db/models"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
	"github.com/atelierhq/repairops-backend/pkg/metrics"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
	"github.com/atelierhq/repairops-backend/pkg/types"
)

// Service composes immutable invoice snapshots. Lines and the customer
// identity are copied by value at issue time so later catalog or customer
// edits never change an issued invoice. The only permitted mutation
// afterwards is the payment status.
type Service interface {
	Compose(ctx context.Context, input ComposeInput) (*models.Invoice, error)
	Get(ctx context.Context, companyID, invoiceID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, filters InvoiceFilters, params pagination.Params) (*InvoiceList, error)
	UpdatePaymentStatus(ctx context.Context, companyID, invoiceID uuid.UUID, status enums.PaymentStatus) (*models.Invoice, error)
}

type service struct {
	repo      Repository
	partsRepo parts.Repository
	ticketSvc tickets.Service
	custSvc   customers.Service
	seq       sequences.Service
	client    *db.Client
	metrics   *metrics.CoreMetrics
	taxRate   decimal.Decimal
	logg      *logger.Logger
}

// NewService wires an invoice service. Metrics are optional.
func NewService(
	repo Repository,
	partsRepo parts.Repository,
	ticketSvc tickets.Service,
	custSvc customers.Service,
	seq sequences.Service,
	client *db.Client,
	coreMetrics *metrics.CoreMetrics,
	billing config.BillingConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if partsRepo == nil {
		return nil, fmt.Errorf("consumption repository required")
	}
	if ticketSvc == nil {
		return nil, fmt.Errorf("ticket service required")
	}
	if custSvc == nil {
		return nil, fmt.Errorf("customer service required")
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

	return &service{
		repo:      repo,
		partsRepo: partsRepo,
		ticketSvc: ticketSvc,
		custSvc:   custSvc,
		seq:       seq,
		client:    client,
		metrics:   coreMetrics,
		taxRate:   taxRate,
		logg:      logg,
	}, nil
}

func (s *service) Compose(ctx context.Context, input ComposeInput) (*models.Invoice, error) {
	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	if input.TicketID == nil && input.CustomerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a ticket or a customer is required")
	}
	for i, line := range input.ManualLines {
		if line.Description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("manual line %d: description is required", i))
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("manual line %d: quantity must be positive", i))
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("manual line %d: unit price cannot be negative", i))
		}
	}

	taxRate := s.taxRate
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
		}
		taxRate = *input.TaxRate
	}

	customerID, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	customer, err := s.custSvc.Get(ctx, input.CompanyID, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoice := &models.Invoice{
		ID:         uuid.New(),
		CompanyID:  input.CompanyID,
		CustomerID: customer.ID,
		TicketID:   input.TicketID,
		IssueDate:  now,
		DueDate:    input.DueDate,
		CustomerSnapshot: types.CustomerSnapshot{
			ID:    customer.ID,
			Name:  customer.Name,
			Kind:  customer.Kind,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		TaxRate:       taxRate,
		PaymentStatus: enums.PaymentStatusPending,
		Notes:         input.Notes,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var consumptions []models.PartConsumption
		if input.TicketID != nil {
			var err error
			consumptions, err = s.partsRepo.WithTx(tx).ListUninvoiced(ctx, input.CompanyID, *input.TicketID)
			if err != nil {
				return err
			}
		}

		lines := buildLines(consumptions, input.ManualLines)
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeNoLineItems, "nothing to bill")
		}
		invoice.Lines = lines

		subtotal, taxAmount, grandTotal := Totals(lines, taxRate)
		invoice.Subtotal = subtotal
		invoice.TaxAmount = taxAmount
		invoice.GrandTotal = grandTotal

		number, err := s.seq.Next(ctx, tx, input.CompanyID, enums.DocumentKindInvoice, now)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number.Formatted

		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, invoice); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeDuplicateDocument, "invoice number already issued")
			}
			return err
		}

		if input.TicketID != nil {
			ids := make([]uuid.UUID, len(consumptions))
			for i, consumption := range consumptions {
				ids[i] = consumption.ID
			}
			claimed, err := s.partsRepo.WithTx(tx).MarkInvoiced(ctx, ids, invoice.ID)
			if err != nil {
				return err
			}
			// A short claim means a competing invoice billed some of these
			// consumptions after we listed them; back out entirely.
			if claimed != int64(len(ids)) {
				return pkgerrors.New(pkgerrors.CodeConcurrentModification, "consumptions were invoiced concurrently").
					WithDetails(map[string]any{"expected": len(ids), "claimed": claimed})
			}
			if err := txRepo.SetTicketInvoice(ctx, input.CompanyID, *input.TicketID, invoice.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncInvoiceIssued()
	s.logg.Info(s.logg.WithField(ctx, "invoice_number", invoice.InvoiceNumber), "invoice composed")
	return invoice, nil
}

func (s *service) resolveCustomer(ctx context.Context, input ComposeInput) (uuid.UUID, error) {
	if input.TicketID != nil {
		ticket, err := s.ticketSvc.Get(ctx, input.CompanyID, *input.TicketID)
		if err != nil {
			return uuid.Nil, err
		}
		return ticket.CustomerID, nil
	}
	return *input.CustomerID, nil
}

func buildLines(consumptions []models.PartConsumption, manual []ManualLine) types.InvoiceLines {
	lines := make(types.InvoiceLines, 0, len(consumptions)+len(manual))
	for _, consumption := range consumptions {
		unitPrice := decimal.Zero
		if consumption.UnitPrice != nil {
			unitPrice = *consumption.UnitPrice
		}
		qty := decimal.NewFromInt(int64(consumption.Quantity))
		lines = append(lines, types.InvoiceLine{
			Description: consumption.PartName,
			Quantity:    consumption.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice.Mul(qty),
		})
	}
	for _, line := range manual {
		qty := decimal.NewFromInt(int64(line.Quantity))
		lines = append(lines, types.InvoiceLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.UnitPrice.Mul(qty),
		})
	}
	return lines
}

// Totals computes subtotal, tax and grand total for a set of lines. Rounding
// to the currency minor unit happens exactly once, at the subtotal→tax step;
// decimal.Round rounds half away from zero, which for non-negative amounts
// is round-half-up.
func Totals(lines types.InvoiceLines, taxRatePercent decimal.Decimal) (subtotal, taxAmount, grandTotal decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	subtotal = subtotal.Round(2)
	taxAmount = subtotal.Mul(taxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	grandTotal = subtotal.Add(taxAmount)
	return subtotal, taxAmount, grandTotal
}

func (s *service) Get(ctx context.Context, companyID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.Find(ctx, companyID, invoiceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, companyID uuid.UUID, filters InvoiceFilters, params pagination.Params) (*InvoiceList, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	return s.repo.List(ctx, companyID, filters, params)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, companyID, invoiceID uuid.UUID, status enums.PaymentStatus) (*models.Invoice, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
	}
	updated, err := s.repo.UpdatePaymentStatus(ctx, companyID, invoiceID, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return s.Get(ctx, companyID, invoiceID)
}
