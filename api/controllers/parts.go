package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/api/responses"
	"github.com/atelierhq/repairops-backend/api/validators"
	"github.com/atelierhq/repairops-backend/internal/parts"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

type consumePartRequest struct {
	StockItemID *uuid.UUID       `json:"stock_item_id"`
	PartName    string           `json:"part_name" validate:"omitempty,max=255"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

func TicketConsumePart(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req consumePartRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consumption, err := svc.ConsumePart(r.Context(), parts.ConsumePartInput{
			CompanyID:   companyID,
			TicketID:    ticketID,
			StockItemID: req.StockItemID,
			PartName:    req.PartName,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, consumption)
	}
}

func TicketParts(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		consumptions, err := svc.ListByTicket(r.Context(), companyID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"consumptions": consumptions})
	}
}
