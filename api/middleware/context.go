package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

type contextKey string

const (
	ctxPrincipalID contextKey = "principal_id"
	ctxAccountType contextKey = "account_type"
	ctxAdminID     contextKey = "admin_id"
	ctxAccessID    contextKey = "access_id"
)

func PrincipalIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxPrincipalID).(string); ok {
		return v
	}
	return ""
}

func AccountTypeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountType).(string); ok {
		return v
	}
	return ""
}

func AdminIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminID).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the session actor seeded by the auth middleware.
func ActorFromContext(ctx context.Context) (scope.Actor, bool) {
	id, err := uuid.Parse(PrincipalIDFromContext(ctx))
	if err != nil {
		return scope.Actor{}, false
	}
	accountType := enums.AccountType(AccountTypeFromContext(ctx))
	if !accountType.IsValid() {
		return scope.Actor{}, false
	}
	actor := scope.Actor{ID: id, AccountType: accountType}
	if raw := AdminIDFromContext(ctx); raw != "" {
		if adminID, err := uuid.Parse(raw); err == nil {
			actor.AdminID = &adminID
		}
	}
	return actor, true
}

// WithActor injects actor fields into the context, used by tests.
func WithActor(ctx context.Context, actor scope.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxPrincipalID, actor.ID.String())
	ctx = context.WithValue(ctx, ctxAccountType, string(actor.AccountType))
	if actor.AdminID != nil {
		ctx = context.WithValue(ctx, ctxAdminID, actor.AdminID.String())
	}
	return ctx
}

// WithAccessID injects the session access identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
