package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mvalledor/stocktrace-backend/api/responses"
	pkgAuth "github.com/mvalledor/stocktrace-backend/pkg/auth"
	"github.com/mvalledor/stocktrace-backend/pkg/auth/session"
	"github.com/mvalledor/stocktrace-backend/pkg/config"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
)

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}

// Auth verifies the access token and that its session is still live,
// then seeds the request context with the actor's identity. Every
// scoped route sits behind this guard.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifyRequest(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := seedClaims(r.Context(), claims)
			if logg != nil {
				fields := map[string]any{
					"principal_id": claims.PrincipalID.String(),
					"account_type": string(claims.AccountType),
				}
				if claims.AdminID != nil {
					fields["admin_id"] = claims.AdminID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyRequest(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	// A valid signature is not enough: logout and rotation kill the
	// session server-side before the token expires.
	if verifier != nil {
		live, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}
	return claims, nil
}

func seedClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, ctxPrincipalID, claims.PrincipalID.String())
	ctx = context.WithValue(ctx, ctxAccountType, string(claims.AccountType))
	ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
	if claims.AdminID != nil {
		ctx = context.WithValue(ctx, ctxAdminID, claims.AdminID.String())
	}
	return ctx
}
