package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "stocktrace", ExpirationMinutes: 10}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	adminID := uuid.New()
	payload := AccessTokenPayload{
		PrincipalID: uuid.New(),
		AccountType: enums.AccountTypeUser,
		AdminID:     &adminID,
		JTI:         "jti-1",
	}

	token, err := MintAccessToken(cfg, time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.PrincipalID != payload.PrincipalID {
		t.Fatal("principal id mismatch")
	}
	if claims.AccountType != enums.AccountTypeUser {
		t.Fatal("account type mismatch")
	}
	if claims.AdminID == nil || *claims.AdminID != adminID {
		t.Fatal("admin id mismatch")
	}
	if claims.ID != "jti-1" {
		t.Fatalf("jti mismatch: %s", claims.ID)
	}
	if claims.Subject != payload.PrincipalID.String() {
		t.Fatal("subject must carry the principal id")
	}
}

func TestMintRejectsInvalidAccountType(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now().UTC(), AccessTokenPayload{
		PrincipalID: uuid.New(),
		AccountType: enums.AccountType("owner"),
	})
	if err == nil || !strings.Contains(err.Error(), "account type") {
		t.Fatalf("expected account type rejection, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		PrincipalID: uuid.New(),
		AccountType: enums.AccountTypeAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestParseRejectsExpiredButAllowExpiredAccepts(t *testing.T) {
	cfg := testJWTConfig()
	issued := time.Now().UTC().Add(-time.Hour)
	token, err := MintAccessToken(cfg, issued, AccessTokenPayload{
		PrincipalID: uuid.New(),
		AccountType: enums.AccountTypeAdmin,
		JTI:         "jti-expired",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry rejection")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow expired parse: %v", err)
	}
	if claims.ID != "jti-expired" {
		t.Fatal("jti must survive expired parse")
	}
}
