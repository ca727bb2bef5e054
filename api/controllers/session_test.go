package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/internal/identity"
	pkgAuth "github.com/mvalledor/stocktrace-backend/pkg/auth"
	"github.com/mvalledor/stocktrace-backend/pkg/auth/session"
	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

type stubRotator struct {
	lastOld      string
	lastProvided string
	respID       string
	respToken    string
	err          error
}

func (s *stubRotator) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.lastOld = oldAccessID
	s.lastProvided = provided
	return s.respID, s.respToken, s.err
}

type stubIdentityService struct {
	signedOutAccess    string
	signedOutPrincipal uuid.UUID
	signOutErr         error
}

func (s *stubIdentityService) SignUp(ctx context.Context, req identity.SignUpRequest) (*identity.PrincipalDTO, error) {
	return nil, nil
}

func (s *stubIdentityService) SignIn(ctx context.Context, req identity.SignInRequest) (*identity.Session, error) {
	return nil, nil
}

func (s *stubIdentityService) SignOut(ctx context.Context, accessID string, principalID uuid.UUID) error {
	s.signedOutAccess = accessID
	s.signedOutPrincipal = principalID
	return s.signOutErr
}

func (s *stubIdentityService) RestoreSession(ctx context.Context, accessID string, principalID uuid.UUID) (*identity.PrincipalDTO, error) {
	return nil, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "stocktrace", ExpirationMinutes: 10}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig) (string, string, uuid.UUID) {
	t.Helper()
	accessID := session.NewAccessID()
	principalID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		PrincipalID: principalID,
		AccountType: enums.AccountTypeAdmin,
		JTI:         accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID, principalID
}

func TestAuthLogout(t *testing.T) {
	cfg := testJWTConfig()
	svc := &stubIdentityService{}
	handler := AuthLogout(svc, cfg, nil)

	token, jti, principalID := mintTestToken(t, cfg)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.signedOutAccess != jti {
		t.Fatalf("expected sign out for %s got %s", jti, svc.signedOutAccess)
	}
	if svc.signedOutPrincipal != principalID {
		t.Fatal("principal id mismatch")
	}
}

func TestAuthLogoutWithoutTokenIsUnauthorized(t *testing.T) {
	handler := AuthLogout(&stubIdentityService{}, testJWTConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefresh(t *testing.T) {
	cfg := testJWTConfig()
	rotator := &stubRotator{respID: "new-jti", respToken: "new-refresh"}
	handler := AuthRefresh(rotator, cfg, nil)

	token, jti, _ := mintTestToken(t, cfg)
	body, _ := json.Marshal(map[string]string{"refresh_token": "old-refresh"})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if rotator.lastOld != jti || rotator.lastProvided != "old-refresh" {
		t.Fatalf("unexpected rotate call old=%s provided=%s", rotator.lastOld, rotator.lastProvided)
	}

	var envelope struct {
		Data refreshResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected refresh payload %+v", envelope.Data)
	}
}

func TestAuthRefreshRejectsInvalidRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	rotator := &stubRotator{err: session.ErrInvalidRefreshToken}
	handler := AuthRefresh(rotator, cfg, nil)

	token, _, _ := mintTestToken(t, cfg)
	body, _ := json.Marshal(map[string]string{"refresh_token": "forged"})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
