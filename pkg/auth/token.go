package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// RejectionKind classifies why a token failed verification.
type RejectionKind string

const (
	RejectionMalformed        RejectionKind = "malformed"
	RejectionExpired          RejectionKind = "expired"
	RejectionSignatureInvalid RejectionKind = "signature_invalid"
	RejectionAudienceInvalid  RejectionKind = "audience_invalid"
	RejectionMissingClaim     RejectionKind = "missing_claim"
)

// Rejection is the verification failure returned by VerifyAccessToken and
// ResolveIdentity. It always carries a kind; the cause is kept for logs.
type Rejection struct {
	Kind  RejectionKind
	cause error
}

func (r *Rejection) Error() string {
	if r.cause == nil {
		return fmt.Sprintf("token rejected: %s", r.Kind)
	}
	return fmt.Sprintf("token rejected: %s: %v", r.Kind, r.cause)
}

func (r *Rejection) Unwrap() error {
	return r.cause
}

// RejectionKindOf extracts the rejection kind from an error chain, or ""
// when the error is not a token rejection.
func RejectionKindOf(err error) RejectionKind {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Kind
	}
	return ""
}

// MintAccessToken issues a signed JWT for the provided payload using the
// configured lifetime. Pure given identical inputs and signing key.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("jwt issuer is required")
	}
	if cfg.Audience == "" {
		return "", fmt.Errorf("jwt audience is required")
	}
	if cfg.Lifetime() <= 0 {
		return "", fmt.Errorf("jwt lifetime must be positive")
	}
	if payload.UserID <= 0 {
		return "", fmt.Errorf("user id must be positive")
	}
	if !payload.Role.IsValid() {
		return "", fmt.Errorf("invalid role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		Name:   payload.Name,
		Role:   payload.Role,
		UserID: strconv.Itoa(payload.UserID),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   payload.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Lifetime())),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates the JWT string and returns typed claims.
// Failures come back as *Rejection with a classified kind; malformed input
// never panics.
func VerifyAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
	)
	if err != nil {
		return nil, classifyRejection(err)
	}

	return claims, nil
}

func classifyRejection(err error) *Rejection {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &Rejection{Kind: RejectionSignatureInvalid, cause: err}
	// The taxonomy has a single time-window kind, so nbf violations
	// classify as expired too.
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return &Rejection{Kind: RejectionExpired, cause: err}
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return &Rejection{Kind: RejectionAudienceInvalid, cause: err}
	default:
		return &Rejection{Kind: RejectionMalformed, cause: err}
	}
}
