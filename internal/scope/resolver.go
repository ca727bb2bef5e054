package scope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
)

// Owned is implemented by any record carrying an ownership scope.
type Owned interface {
	OwnedBy() uuid.UUID
}

type principalGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
}

// Resolver computes the set of owners whose records an actor may see. It is
// the single source of truth for the hierarchy rule; every data-access path
// goes through it.
type Resolver struct {
	principals principalGetter
}

func NewResolver(principals principalGetter) (*Resolver, error) {
	if principals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "principal repository required")
	}
	return &Resolver{principals: principals}, nil
}

// OwnerSet is the resolved visibility scope for one actor.
type OwnerSet struct {
	owners map[uuid.UUID]struct{}
}

// Allows reports whether records owned by the given principal are in scope.
func (s OwnerSet) Allows(owner uuid.UUID) bool {
	_, ok := s.owners[owner]
	return ok
}

// Empty reports whether the scope admits nothing.
func (s OwnerSet) Empty() bool {
	return len(s.owners) == 0
}

// IDs returns the owner ids in the set.
func (s OwnerSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.owners))
	for id := range s.owners {
		ids = append(ids, id)
	}
	return ids
}

func ownerSet(ids ...uuid.UUID) OwnerSet {
	owners := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		owners[id] = struct{}{}
	}
	return OwnerSet{owners: owners}
}

// ScopeFor resolves the actor's visibility. SuperAdmins see their own
// top-level pool. Admins and Users see their own records plus their admin's
// shared pool, after confirming the admin record still exists. Restricted
// actors, and staff whose admin link does not resolve, see nothing.
func (r *Resolver) ScopeFor(ctx context.Context, actor Actor) (OwnerSet, error) {
	switch actor.AccountType {
	case enums.AccountTypeSuperAdmin:
		return ownerSet(actor.ID), nil
	case enums.AccountTypeAdmin, enums.AccountTypeUser:
		if actor.AdminID == nil {
			return ownerSet(), nil
		}
		admin, err := r.principals.FindByID(ctx, *actor.AdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ownerSet(), nil
			}
			return OwnerSet{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin record")
		}
		return ownerSet(actor.ID, admin.ID), nil
	default:
		return ownerSet(), nil
	}
}

// CanView reports whether the actor may read a record with the given owner.
func (r *Resolver) CanView(ctx context.Context, actor Actor, owner uuid.UUID) (bool, error) {
	set, err := r.ScopeFor(ctx, actor)
	if err != nil {
		return false, err
	}
	return set.Allows(owner), nil
}

// CanMutate reports whether the actor may write a record with the given owner.
// The hierarchy rule is the same as for reads; Restricted actors fail both.
func (r *Resolver) CanMutate(ctx context.Context, actor Actor, owner uuid.UUID) (bool, error) {
	return r.CanView(ctx, actor, owner)
}

// Project recomputes the filtered view of a snapshot for a resolved scope.
// Full recompute on every call; correctness after a write depends on it.
func Project[T Owned](set OwnerSet, records []T) []T {
	projected := make([]T, 0, len(records))
	for _, record := range records {
		if set.Allows(record.OwnedBy()) {
			projected = append(projected, record)
		}
	}
	return projected
}
