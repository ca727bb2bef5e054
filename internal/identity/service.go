package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/mvalledor/stocktrace-backend/pkg/auth"
	"github.com/mvalledor/stocktrace-backend/pkg/auth/session"
	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the identity and session lifecycle used by the controllers.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*PrincipalDTO, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
	SignOut(ctx context.Context, accessID string, principalID uuid.UUID) error
	RestoreSession(ctx context.Context, accessID string, principalID uuid.UUID) (*PrincipalDTO, error)
}

type principalRepository interface {
	Create(ctx context.Context, principal *models.Principal) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
	CachePrincipal(ctx context.Context, accessID string, principal *models.Principal) error
	CachedPrincipal(ctx context.Context, accessID string) (*models.Principal, error)
}

type service struct {
	provider   Provider
	principals principalRepository
	sessions   sessionManager
	jwtCfg     config.JWTConfig
	hub        *watch.Hub
	logg       *logger.Logger
}

// ServiceParams bundles the dependencies required to build the identity service.
type ServiceParams struct {
	Provider       Provider
	PrincipalRepo  principalRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Hub            *watch.Hub
	Logger         *logger.Logger
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.PrincipalRepo == nil {
		return nil, fmt.Errorf("principal repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		provider:   params.Provider,
		principals: params.PrincipalRepo,
		sessions:   params.SessionManager,
		jwtCfg:     params.JWTConfig,
		hub:        params.Hub,
		logg:       params.Logger,
	}, nil
}

// SignUp creates the provider credential, then writes the principal record.
// The two writes are not atomic: a profile-write failure after the credential
// exists surfaces as a partial-write failure carrying the credential id, so
// the caller can retry or reconcile instead of discovering the gap at sign-in.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*PrincipalDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.AccountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}

	if req.AccountType == enums.AccountTypeSuperAdmin {
		if req.AdminID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "super admins cannot have an admin link")
		}
	} else {
		if req.AdminID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required for this account type")
		}
		admin, err := s.principals.FindByID(ctx, *req.AdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id does not reference an existing principal")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin record")
		}
		if !admin.AccountType.IsAdminTier() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id must reference an admin-tier principal")
		}
		if req.AdminName == nil {
			req.AdminName = &admin.DisplayName
		}
	}

	accountID, err := s.provider.CreateAccount(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create provider account")
	}

	principal := &models.Principal{
		ID:          accountID,
		Email:       email,
		DisplayName: req.DisplayName,
		AccountType: req.AccountType,
		AdminID:     req.AdminID,
		AdminName:   req.AdminName,
		ImageURL:    req.ImageURL,
		Position:    req.Position,
		Department:  req.Department,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		s.logOrphanedCredential(ctx, accountID, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "profile write failed after credential creation").
			WithDetails(map[string]any{
				"completed_step": "create_account",
				"failed_step":    "write_profile",
				"credential_id":  accountID.String(),
			})
	}

	if s.hub != nil {
		s.hub.Publish(watch.CollectionPrincipals)
	}

	dto := FromModel(principal)
	return &dto, nil
}

func (s *service) logOrphanedCredential(ctx context.Context, accountID uuid.UUID, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"credential_id": accountID.String(),
		"failed_step":   "write_profile",
	})
	s.logg.Error(ctx, "signup left orphaned credential", err)
}

// SignIn authenticates against the provider, loads the principal record, and
// opens a session. A valid credential without a profile record blocks usage.
func (s *service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	accountID, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authenticate")
	}

	principal, err := s.principals.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProfileMissing, "authenticated account has no profile record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load principal record")
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		PrincipalID: principal.ID,
		AccountType: principal.AccountType,
		AdminID:     principal.AdminID,
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	if err := s.sessions.CachePrincipal(ctx, accessID, principal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache principal snapshot")
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Principal:    FromModel(principal),
	}, nil
}

// SignOut tears down the provider session and the local session state.
func (s *service) SignOut(ctx context.Context, accessID string, principalID uuid.UUID) error {
	if err := s.provider.EndSession(ctx, principalID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "end provider session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// RestoreSession rehydrates the current principal: cached snapshot first, then
// a store fetch when the cache is cold but the provider session is still live.
// Both empty returns (nil, nil) rather than an error.
func (s *service) RestoreSession(ctx context.Context, accessID string, principalID uuid.UUID) (*PrincipalDTO, error) {
	cached, err := s.sessions.CachedPrincipal(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read principal snapshot")
	}
	if cached != nil {
		dto := FromModel(cached)
		return &dto, nil
	}

	alive, err := s.sessions.HasSession(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
	}
	if !alive {
		return nil, nil
	}

	principal, err := s.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProfileMissing, "session principal has no profile record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load principal record")
	}

	if err := s.sessions.CachePrincipal(ctx, accessID, principal); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "access_id", accessID), "failed to refresh principal snapshot")
	}

	dto := FromModel(principal)
	return &dto, nil
}
