package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/api/responses"
	"github.com/atelierhq/repairops-backend/api/validators"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

type createTicketRequest struct {
	CustomerID       uuid.UUID  `json:"customer_id" validate:"required"`
	DeviceID         uuid.UUID  `json:"device_id" validate:"required"`
	Priority         string     `json:"priority"`
	FaultDescription string     `json:"fault_description" validate:"required,max=2000"`
	TechnicianID     *uuid.UUID `json:"technician_id"`
}

type transitionRequest struct {
	Target string  `json:"target" validate:"required"`
	Note   *string `json:"note" validate:"omitempty,max=1000"`
}

func TicketCreate(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var priority enums.TicketPriority
		if req.Priority != "" {
			parsed, err := enums.ParseTicketPriority(req.Priority)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority"))
				return
			}
			priority = parsed
		}

		ticket, err := svc.Create(r.Context(), tickets.CreateTicketInput{
			CompanyID:        companyID,
			CustomerID:       req.CustomerID,
			DeviceID:         req.DeviceID,
			Priority:         priority,
			FaultDescription: validators.SanitizeString(req.FaultDescription, 2000),
			TechnicianID:     req.TechnicianID,
			ActorUserID:      userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

func TicketList(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := ticketFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), companyID, *filters, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func TicketDetail(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
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

		ticket, err := svc.Get(r.Context(), companyID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

func TicketHistory(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
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

		events, err := svc.History(r.Context(), companyID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"events": events})
	}
}

// TicketTransitions returns the set of statuses the ticket can legally move
// to, so clients can render only the valid actions.
func TicketTransitions(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
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

		allowed, err := svc.AllowedNext(r.Context(), companyID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"allowed": allowed})
	}
}

func TicketTransition(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseTicketStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		ticket, err := svc.Transition(r.Context(), tickets.TransitionInput{
			CompanyID:   companyID,
			TicketID:    ticketID,
			Target:      target,
			Note:        req.Note,
			ActorUserID: userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

func ticketFilters(r *http.Request) (*tickets.TicketFilters, error) {
	filters := &tickets.TicketFilters{}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseTicketStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	customerID, err := queryUUID(r, "customer_id")
	if err != nil {
		return nil, err
	}
	filters.CustomerID = customerID

	technicianID, err := queryUUID(r, "technician_id")
	if err != nil {
		return nil, err
	}
	filters.TechnicianID = technicianID

	if filters.DateFrom, err = queryDate(r, "date_from"); err != nil {
		return nil, err
	}
	if filters.DateTo, err = queryDate(r, "date_to"); err != nil {
		return nil, err
	}
	return filters, nil
}
