package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/repairops-backend/api/responses"
	"github.com/atelierhq/repairops-backend/api/validators"
	"github.com/atelierhq/repairops-backend/internal/inventory"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

type createStockItemRequest struct {
	Code            string           `json:"code" validate:"required,max=64"`
	Name            string           `json:"name" validate:"required,max=255"`
	Unit            string           `json:"unit" validate:"omitempty,max=16"`
	CriticalLevel   *int             `json:"critical_level" validate:"omitempty,min=0"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	OpeningQuantity int              `json:"opening_quantity" validate:"omitempty,min=0"`
}

type updateStockItemRequest struct {
	Name          *string          `json:"name" validate:"omitempty,max=255"`
	Unit          *string          `json:"unit" validate:"omitempty,max=16"`
	CriticalLevel *int             `json:"critical_level" validate:"omitempty,min=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

type recordMovementRequest struct {
	StockItemID uuid.UUID        `json:"stock_item_id" validate:"required"`
	Direction   string           `json:"direction" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TicketID    *uuid.UUID       `json:"ticket_id"`
	Reference   *string          `json:"reference" validate:"omitempty,max=255"`
}

func StockItemCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createStockItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			CompanyID:       companyID,
			Code:            req.Code,
			Name:            req.Name,
			Unit:            req.Unit,
			CriticalLevel:   req.CriticalLevel,
			PurchasePrice:   req.PurchasePrice,
			SalePrice:       req.SalePrice,
			OpeningQuantity: req.OpeningQuantity,
			ActorUserID:     userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func StockItemList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, nextCursor, err := svc.ListItems(r.Context(), companyID, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "next_cursor": nextCursor})
	}
}

func StockItemUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStockItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), companyID, itemID, inventory.UpdateItemInput{
			Name:          req.Name,
			Unit:          req.Unit,
			CriticalLevel: req.CriticalLevel,
			PurchasePrice: req.PurchasePrice,
			SalePrice:     req.SalePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func StockMovementCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		direction, err := enums.ParseMovementDirection(req.Direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
			return
		}

		movement, err := svc.RecordMovement(r.Context(), inventory.RecordMovementInput{
			CompanyID:   companyID,
			StockItemID: req.StockItemID,
			Direction:   direction,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			TicketID:    req.TicketID,
			Reference:   req.Reference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// StockItemMovements returns the ledger page for one catalog item.
func StockItemMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventory.MovementFilters{StockItemID: &itemID}
		if raw := r.URL.Query().Get("direction"); raw != "" {
			direction, err := enums.ParseMovementDirection(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction filter"))
				return
			}
			filters.Direction = &direction
		}
		if filters.TicketID, err = queryUUID(r, "ticket_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateFrom, err = queryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = queryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMovements(r.Context(), companyID, filters, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func StockItemBalance(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.CurrentBalance(r.Context(), companyID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		critical, err := svc.IsCritical(r.Context(), companyID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"stock_item_id": itemID,
			"on_hand":       balance,
			"is_critical":   critical,
		})
	}
}

func StockCritical(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListCritical(r.Context(), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
