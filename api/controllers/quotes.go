package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/api/responses"
	"github.com/atelierhq/repairops-backend/api/validators"
	"github.com/atelierhq/repairops-backend/internal/quotes"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

type prepareQuoteRequest struct {
	Repairable   bool             `json:"repairable"`
	RepairDetail string           `json:"repair_detail" validate:"required,max=2000"`
	Amount       *decimal.Decimal `json:"amount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

type quoteDecisionRequest struct {
	Approved bool    `json:"approved"`
	Note     *string `json:"note" validate:"omitempty,max=1000"`
}

func TicketQuotePrepare(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req prepareQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Prepare(r.Context(), quotes.PrepareInput{
			CompanyID:    companyID,
			TicketID:     ticketID,
			Repairable:   req.Repairable,
			RepairDetail: validators.SanitizeString(req.RepairDetail, 2000),
			Amount:       req.Amount,
			TaxRate:      req.TaxRate,
			ActorUserID:  userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

func TicketQuotes(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticketID, err := pathUUID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByTicket(r.Context(), companyID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"quotes": list})
	}
}

func QuoteDecision(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req quoteDecisionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Decide(r.Context(), quotes.DecisionInput{
			CompanyID:   companyID,
			QuoteID:     quoteID,
			Approved:    req.Approved,
			Note:        req.Note,
			ActorUserID: userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
