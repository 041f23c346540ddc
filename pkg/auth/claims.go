package auth

import (
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int
	Name   string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. The claim
// names ("name", "role", "Id" as a stringified integer) match what the
// legacy clients already decode, so tokens stay wire-compatible.
type AccessTokenClaims struct {
	Name   string     `json:"name"`
	Role   enums.Role `json:"role"`
	UserID string     `json:"Id"`
	jwt.RegisteredClaims
}
