package auth

import (
	"fmt"
	"strconv"

	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
)

// Identity is the resolved, typed representation of the request principal.
// It lives for one request.
type Identity struct {
	UserID int
	Role   enums.Role
	Name   string
}

// ResolveIdentity turns verified claims into an Identity. Pure, no I/O.
// An Identity is never constructed from claims that fail resolution.
func ResolveIdentity(claims *AccessTokenClaims) (Identity, error) {
	if claims == nil {
		return Identity{}, &Rejection{Kind: RejectionMissingClaim, cause: fmt.Errorf("nil claims")}
	}

	id, err := strconv.Atoi(claims.UserID)
	if err != nil || id <= 0 {
		return Identity{}, &Rejection{Kind: RejectionMissingClaim, cause: fmt.Errorf("claim Id is not a positive integer: %q", claims.UserID)}
	}

	role, err := enums.ParseRole(string(claims.Role))
	if err != nil {
		return Identity{}, &Rejection{Kind: RejectionMissingClaim, cause: err}
	}

	return Identity{UserID: id, Role: role, Name: claims.Name}, nil
}

// Authenticate composes token verification and identity resolution,
// short-circuiting on the first failure.
func Authenticate(cfg config.JWTConfig, tokenString string) (Identity, error) {
	claims, err := VerifyAccessToken(cfg, tokenString)
	if err != nil {
		return Identity{}, err
	}
	return ResolveIdentity(claims)
}
