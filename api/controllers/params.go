package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/api/middleware"
	pkgerrors "github.com/atelierhq/repairops-backend/pkg/errors"
	"github.com/atelierhq/repairops-backend/pkg/pagination"
)

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": key})
	}
	return id, nil
}

func actor(r *http.Request) (companyID, userID uuid.UUID, err error) {
	companyID = middleware.CompanyIDFromContext(r.Context())
	userID = middleware.UserIDFromContext(r.Context())
	if companyID == uuid.Nil || userID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return companyID, userID, nil
}

func pageParams(r *http.Request) pagination.Params {
	q := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		for _, c := range raw {
			if c < '0' || c > '9' {
				limit = 0
				break
			}
			limit = limit*10 + int(c-'0')
		}
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(q.Get("cursor")),
	}
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": key})
	}
	return &id, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
		WithDetails(map[string]any{"param": key})
}
