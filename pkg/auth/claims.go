package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	PrincipalID uuid.UUID
	AccountType enums.AccountType
	AdminID     *uuid.UUID
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	PrincipalID uuid.UUID         `json:"principal_id"`
	AccountType enums.AccountType `json:"account_type"`
	AdminID     *uuid.UUID        `json:"admin_id,omitempty"`
	jwt.RegisteredClaims
}
