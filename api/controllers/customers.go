package controllers

import (
	"net/http"

	"github.com/atelierhq/repairops-backend/api/responses"
	"github.com/atelierhq/repairops-backend/api/validators"
	"github.com/atelierhq/repairops-backend/internal/customers"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/logger"
)

type createCustomerRequest struct {
	Kind      string  `json:"kind" validate:"omitempty,max=32"`
	Name      string  `json:"name" validate:"required,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Email     *string `json:"email" validate:"omitempty,email"`
	TaxNumber *string `json:"tax_number" validate:"omitempty,max=32"`
}

type registerDeviceRequest struct {
	Brand        string  `json:"brand" validate:"required,max=128"`
	Model        string  `json:"model" validate:"required,max=128"`
	SerialNumber *string `json:"serial_number" validate:"omitempty,max=128"`
}

func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createCustomerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var kind enums.CustomerKind
		if req.Kind != "" {
			parsed, err := enums.ParseCustomerKind(req.Kind)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer kind"))
				return
			}
			kind = parsed
		}

		customer, err := svc.Create(r.Context(), customers.CreateCustomerInput{
			CompanyID: companyID,
			Kind:      kind,
			Name:      validators.SanitizeString(req.Name, 255),
			Phone:     req.Phone,
			Email:     req.Email,
			TaxNumber: req.TaxNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, nextCursor, err := svc.List(r.Context(), companyID, pageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"customers": list, "next_cursor": nextCursor})
	}
}

func CustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), companyID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

func CustomerRegisterDevice(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerDeviceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		device, err := svc.RegisterDevice(r.Context(), customers.RegisterDeviceInput{
			CompanyID:    companyID,
			CustomerID:   customerID,
			Brand:        req.Brand,
			Model:        req.Model,
			SerialNumber: req.SerialNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, device)
	}
}

func CustomerDevices(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		devices, err := svc.ListDevices(r.Context(), companyID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"devices": devices})
	}
}
