package scope

import (
	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// Actor is the explicit session context carried into every scoped operation.
// It is seeded from verified token claims by the auth middleware; nothing in
// the service layer reads ambient global session state.
type Actor struct {
	ID          uuid.UUID
	AccountType enums.AccountType
	AdminID     *uuid.UUID
}

// FromPrincipal builds an Actor from a principal record.
func FromPrincipal(p *models.Principal) Actor {
	if p == nil {
		return Actor{}
	}
	return Actor{
		ID:          p.ID,
		AccountType: p.AccountType,
		AdminID:     p.AdminID,
	}
}

// ScopeRoot returns the principal that owns records created by this actor:
// admins own their own pool, staff write into their admin's pool.
func (a Actor) ScopeRoot() uuid.UUID {
	if a.AccountType == enums.AccountTypeUser && a.AdminID != nil {
		return *a.AdminID
	}
	return a.ID
}
