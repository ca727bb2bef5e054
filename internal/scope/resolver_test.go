package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

type stubPrincipalGetter struct {
	byID map[uuid.UUID]*models.Principal
	err  error
}

func (s *stubPrincipalGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestResolver(t *testing.T, getter *stubPrincipalGetter) *Resolver {
	t.Helper()
	resolver, err := NewResolver(getter)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return resolver
}

func TestScopeForSuperAdminSeesOwnPool(t *testing.T) {
	super := Actor{ID: uuid.New(), AccountType: enums.AccountTypeSuperAdmin}
	resolver := newTestResolver(t, &stubPrincipalGetter{})

	set, err := resolver.ScopeFor(context.Background(), super)
	if err != nil {
		t.Fatalf("scope for: %v", err)
	}
	if !set.Allows(super.ID) {
		t.Fatal("expected super admin's own pool in scope")
	}
	if set.Allows(uuid.New()) {
		t.Fatal("unrelated owner must be out of scope")
	}
}

func TestScopeForUserIncludesAdminPool(t *testing.T) {
	adminID := uuid.New()
	getter := &stubPrincipalGetter{byID: map[uuid.UUID]*models.Principal{
		adminID: {ID: adminID, AccountType: enums.AccountTypeSuperAdmin},
	}}
	resolver := newTestResolver(t, getter)

	user := Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	set, err := resolver.ScopeFor(context.Background(), user)
	if err != nil {
		t.Fatalf("scope for: %v", err)
	}
	if !set.Allows(user.ID) || !set.Allows(adminID) {
		t.Fatal("expected user and admin pools in scope")
	}
}

func TestScopeForUserWithMissingAdminRecordIsEmpty(t *testing.T) {
	adminID := uuid.New()
	resolver := newTestResolver(t, &stubPrincipalGetter{})

	user := Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	set, err := resolver.ScopeFor(context.Background(), user)
	if err != nil {
		t.Fatalf("scope for: %v", err)
	}
	if !set.Empty() {
		t.Fatal("missing admin record must resolve to an empty scope")
	}
}

func TestScopeForRestrictedIsEmpty(t *testing.T) {
	resolver := newTestResolver(t, &stubPrincipalGetter{})

	set, err := resolver.ScopeFor(context.Background(), Actor{ID: uuid.New(), AccountType: enums.AccountTypeRestricted})
	if err != nil {
		t.Fatalf("scope for: %v", err)
	}
	if !set.Empty() {
		t.Fatal("restricted actors must see nothing")
	}
}

func TestScopeForPropagatesStoreErrors(t *testing.T) {
	adminID := uuid.New()
	resolver := newTestResolver(t, &stubPrincipalGetter{err: errors.New("connection reset")})

	user := Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	if _, err := resolver.ScopeFor(context.Background(), user); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestProjectFiltersByOwner(t *testing.T) {
	admin := uuid.New()
	other := uuid.New()
	records := []models.InventoryItem{
		{ID: uuid.New(), InventoryOf: admin},
		{ID: uuid.New(), InventoryOf: other},
		{ID: uuid.New(), InventoryOf: admin},
	}

	projected := Project(ownerSet(admin), records)
	if len(projected) != 2 {
		t.Fatalf("expected 2 records, got %d", len(projected))
	}
	for _, record := range projected {
		if record.InventoryOf != admin {
			t.Fatalf("record %s leaked from another scope", record.ID)
		}
	}
}

func TestProjectEmptyScopeYieldsNothing(t *testing.T) {
	records := []models.Receipt{{ID: uuid.New(), ReceiptOf: uuid.New()}}
	if got := Project(ownerSet(), records); len(got) != 0 {
		t.Fatalf("expected empty projection, got %d records", len(got))
	}
}

func TestCanMutateMatchesView(t *testing.T) {
	adminID := uuid.New()
	getter := &stubPrincipalGetter{byID: map[uuid.UUID]*models.Principal{
		adminID: {ID: adminID, AccountType: enums.AccountTypeSuperAdmin},
	}}
	resolver := newTestResolver(t, getter)
	user := Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}

	ok, err := resolver.CanMutate(context.Background(), user, adminID)
	if err != nil {
		t.Fatalf("can mutate: %v", err)
	}
	if !ok {
		t.Fatal("expected mutation on admin pool to be allowed")
	}

	ok, err = resolver.CanMutate(context.Background(), user, uuid.New())
	if err != nil {
		t.Fatalf("can mutate: %v", err)
	}
	if ok {
		t.Fatal("expected mutation outside scope to be denied")
	}
}

func TestActorScopeRoot(t *testing.T) {
	adminID := uuid.New()
	user := Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	if user.ScopeRoot() != adminID {
		t.Fatal("staff writes must land in the admin's pool")
	}

	admin := Actor{ID: uuid.New(), AccountType: enums.AccountTypeAdmin, AdminID: &adminID}
	if admin.ScopeRoot() != admin.ID {
		t.Fatal("admins own their pool")
	}
}
