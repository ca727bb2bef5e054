package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

type stubRepo struct {
	created []*models.InventoryItem
	byID    map[uuid.UUID]*models.InventoryItem
	listed  []models.InventoryItem
	deleted []uuid.UUID
}

func (s *stubRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	s.created = append(s.created, item)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if item, ok := s.byID[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context) ([]models.InventoryItem, error) {
	return s.listed, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
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

func newTestService(t *testing.T, repo *stubRepo, getter *stubGetter) Service {
	t.Helper()
	resolver, err := scope.NewResolver(getter)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(repo, resolver, watch.NewHub())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func createInput() CreateItemInput {
	return CreateItemInput{Name: "Dunk Low", Category: "sneakers", Price: decimal.NewFromInt(120)}
}

func TestAddStocksIntoStaffAdminPool(t *testing.T) {
	adminID := uuid.New()
	getter := &stubGetter{byID: map[uuid.UUID]*models.Principal{
		adminID: {ID: adminID, AccountType: enums.AccountTypeAdmin},
	}}
	repo := &stubRepo{}
	svc := newTestService(t, repo, getter)

	staffActor := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeUser, AdminID: &adminID}
	item, err := svc.Add(context.Background(), staffActor, createInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.InventoryOf != adminID {
		t.Fatal("staff additions must land in the admin's pool")
	}
	if len(repo.created) != 1 {
		t.Fatal("item was not persisted")
	}
}

func TestAddRejectsRestrictedActor(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubGetter{})
	restricted := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeRestricted}

	_, err := svc.Add(context.Background(), restricted, createInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRemoveRejectsOutOfScopeItem(t *testing.T) {
	itemID := uuid.New()
	repo := &stubRepo{byID: map[uuid.UUID]*models.InventoryItem{
		itemID: {ID: itemID, InventoryOf: uuid.New()},
	}}
	svc := newTestService(t, repo, &stubGetter{})

	actor := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeSuperAdmin}
	err := svc.Remove(context.Background(), actor, itemID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("out-of-scope item must not be deleted")
	}
}

func TestRemoveUnknownItemIsNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubGetter{})

	actor := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeSuperAdmin}
	err := svc.Remove(context.Background(), actor, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProjectsToActorScope(t *testing.T) {
	actor := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeSuperAdmin}
	repo := &stubRepo{listed: []models.InventoryItem{
		{ID: uuid.New(), InventoryOf: actor.ID},
		{ID: uuid.New(), InventoryOf: uuid.New()},
	}}
	svc := newTestService(t, repo, &stubGetter{})

	items, err := svc.List(context.Background(), actor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].InventoryOf != actor.ID {
		t.Fatalf("projection leaked records: %+v", items)
	}
}

func TestListForRestrictedIsEmpty(t *testing.T) {
	repo := &stubRepo{listed: []models.InventoryItem{{ID: uuid.New(), InventoryOf: uuid.New()}}}
	svc := newTestService(t, repo, &stubGetter{})

	restricted := scope.Actor{ID: uuid.New(), AccountType: enums.AccountTypeRestricted}
	items, err := svc.List(context.Background(), restricted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatal("restricted actors must see an empty projection")
	}
}
