package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atelierhq/repairops-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      enums.UserRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. Every claim is
// company scoped; handlers read the tenant from here, never from the request.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	CompanyID uuid.UUID      `json:"company_id"`
	Role      enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
