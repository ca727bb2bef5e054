package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeStore) AccessSessionKey(accessID string) string {
	return "st:session:access:" + accessID
}

func (f *fakeStore) CurrentUserKey(accessID string) string {
	return "st:current_user:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestGenerateAndHasSession(t *testing.T) {
	store := newFakeStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected a refresh token")
	}

	alive, err := manager.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !alive {
		t.Fatal("session must exist after generate")
	}

	alive, err = manager.HasSession(ctx, "missing")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if alive {
		t.Fatal("unknown access id must have no session")
	}
}

func TestRotateInvalidatesOldSessionAndSnapshot(t *testing.T) {
	store := newFakeStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.CachePrincipal(ctx, accessID, &models.Principal{ID: uuid.New(), AccountType: enums.AccountTypeUser}); err != nil {
		t.Fatalf("cache principal: %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == accessID || newToken == token {
		t.Fatal("rotation must produce a fresh pair")
	}

	alive, _ := manager.HasSession(ctx, accessID)
	if alive {
		t.Fatal("old session must be gone after rotation")
	}
	if cached, _ := manager.CachedPrincipal(ctx, accessID); cached != nil {
		t.Fatal("old snapshot must be dropped on rotation")
	}

	alive, _ = manager.HasSession(ctx, newAccessID)
	if !alive {
		t.Fatal("new session must exist after rotation")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newFakeStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := manager.Rotate(ctx, accessID, "forged"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeDropsSessionAndSnapshot(t *testing.T) {
	store := newFakeStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	if _, err := manager.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.CachePrincipal(ctx, accessID, &models.Principal{ID: uuid.New(), AccountType: enums.AccountTypeUser}); err != nil {
		t.Fatalf("cache principal: %v", err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if alive, _ := manager.HasSession(ctx, accessID); alive {
		t.Fatal("session must be gone")
	}
	if cached, _ := manager.CachedPrincipal(ctx, accessID); cached != nil {
		t.Fatal("snapshot must be gone")
	}
}

func TestCachedPrincipalRoundTrip(t *testing.T) {
	store := newFakeStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	principal := &models.Principal{
		ID:          uuid.New(),
		Email:       "a@b.com",
		DisplayName: "A",
		AccountType: enums.AccountTypeAdmin,
	}
	if err := manager.CachePrincipal(ctx, accessID, principal); err != nil {
		t.Fatalf("cache: %v", err)
	}

	cached, err := manager.CachedPrincipal(ctx, accessID)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	if cached == nil || cached.ID != principal.ID || cached.AccountType != principal.AccountType {
		t.Fatalf("snapshot mismatch: %+v", cached)
	}

	cold, err := manager.CachedPrincipal(ctx, "missing")
	if err != nil {
		t.Fatalf("cold read: %v", err)
	}
	if cold != nil {
		t.Fatal("cold cache must read as nil, nil")
	}
}
