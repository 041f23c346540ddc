package auth

import (
	"testing"
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
)

func TestResolveIdentity(t *testing.T) {
	claims := &AccessTokenClaims{Name: "Anna", Role: enums.RoleAdmin, UserID: "15"}

	ident, err := ResolveIdentity(claims)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ident.UserID != 15 {
		t.Errorf("expected user id 15, got %d", ident.UserID)
	}
	if ident.Role != enums.RoleAdmin {
		t.Errorf("expected role %q, got %q", enums.RoleAdmin, ident.Role)
	}
	if ident.Name != "Anna" {
		t.Errorf("expected name Anna, got %q", ident.Name)
	}
}

func TestResolveIdentityRejectsBadClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims *AccessTokenClaims
	}{
		{"nil claims", nil},
		{"missing id", &AccessTokenClaims{Role: enums.RolePatient}},
		{"non numeric id", &AccessTokenClaims{UserID: "abc", Role: enums.RolePatient}},
		{"zero id", &AccessTokenClaims{UserID: "0", Role: enums.RolePatient}},
		{"negative id", &AccessTokenClaims{UserID: "-3", Role: enums.RolePatient}},
		{"missing role", &AccessTokenClaims{UserID: "1"}},
		{"unknown role", &AccessTokenClaims{UserID: "1", Role: enums.Role("Janitor")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveIdentity(tc.claims)
			if err == nil {
				t.Fatal("expected an error")
			}
			if kind := RejectionKindOf(err); kind != RejectionMissingClaim {
				t.Errorf("expected %s rejection, got %s", RejectionMissingClaim, kind)
			}
		})
	}
}

func TestAuthenticateEndToEnd(t *testing.T) {
	cfg := testJWTConfig()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 9, Name: "Olga", Role: enums.RoleDoctor})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	ident, err := Authenticate(cfg, signed)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if ident.UserID != 9 || ident.Role != enums.RoleDoctor || ident.Name != "Olga" {
		t.Errorf("unexpected identity: %+v", ident)
	}
}
