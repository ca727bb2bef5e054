package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Provider is the identity boundary: credential creation, authentication, and
// provider-side session teardown. The core treats it as an opaque capability.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (uuid.UUID, error)
	Authenticate(ctx context.Context, email, password string) (uuid.UUID, error)
	EndSession(ctx context.Context, accountID uuid.UUID) error
}

var (
	// ErrAccountExists signals the email is already registered with the provider.
	ErrAccountExists = errors.New("account already exists")
	// ErrBadCredentials signals authentication failed.
	ErrBadCredentials = errors.New("bad credentials")
)
