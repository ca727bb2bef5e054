package receipts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

type stubListRepo struct {
	listed []models.Receipt
}

func (s *stubListRepo) List(ctx context.Context) ([]models.Receipt, error) {
	return s.listed, nil
}

type stubGetter struct {
	byID map[uuid.UUID]*models.Principal
}

func (s *stubGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo *stubListRepo, getter *stubGetter) Service {
	t.Helper()
	resolver, err := scope.NewResolver(getter)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(repo, resolver)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListProjectsToActorScope(t *testing.T) {
	actor := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeSuperAdmin}
	repo := &stubListRepo{listed: []models.Receipt{
		{ID: uuid.New(), ReceiptOf: actor.ID},
		{ID: uuid.New(), ReceiptOf: uuid.New()},
	}}
	svc := newTestService(t, repo, &stubGetter{})

	records, err := svc.List(context.Background(), actor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ReceiptOf != actor.ID {
		t.Fatalf("projection leaked records: %+v", records)
	}
}

func TestListIncludesAdminPoolForStaff(t *testing.T) {
	adminID := uuid.New()
	getter := &stubGetter{byID: map[uuid.UUID]*models.Principal{
		adminID: {ID: adminID, AccountType: enums.AccountTypeAdmin},
	}}
	staff := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	repo := &stubListRepo{listed: []models.Receipt{
		{ID: uuid.New(), ReceiptOf: adminID},
		{ID: uuid.New(), ReceiptOf: staff.ID},
		{ID: uuid.New(), ReceiptOf: uuid.New()},
	}}
	svc := newTestService(t, repo, getter)

	records, err := svc.List(context.Background(), staff)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("staff must see own and admin receipts, got %+v", records)
	}
}

func TestListForRestrictedIsEmpty(t *testing.T) {
	repo := &stubListRepo{listed: []models.Receipt{{ID: uuid.New(), ReceiptOf: uuid.New()}}}
	svc := newTestService(t, repo, &stubGetter{})

	restricted := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeRestricted}
	records, err := svc.List(context.Background(), restricted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatal("restricted actors must see an empty projection")
	}
}
