package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	redisclient "github.com/mvalledor/stocktrace-backend/pkg/redis"
)

// ErrInvalidRefreshToken covers every way a refresh can fail
// verification; callers map it to a 401 without distinguishing cause.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
	CurrentUserKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager owns two redis entries per session, both keyed by the access
// token's jti: the refresh token, and the cached principal snapshot used
// for fast session restore. They live and die together.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	refreshTTL := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", refreshTTL, accessTTL)
	}

	return &Manager{store: client, keyer: client, ttl: refreshTTL}, nil
}

// NewAccessID produces the identifier shared by the JWT jti and the
// session's redis keys.
func NewAccessID() string {
	return uuid.NewString()
}

func mintRefreshSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Generate mints a refresh token for a new session and stores it.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if blank(accessID) {
		return "", fmt.Errorf("access id is required")
	}
	secret, err := mintRefreshSecret()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), secret, m.ttl); err != nil {
		return "", err
	}
	return secret, nil
}

// HasSession reports whether the session is still live. Revocation and
// TTL expiry both surface here as a missing key.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, nil
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redislib.Nil):
		return false, nil
	default:
		return false, err
	}
}

// Rotate verifies the presented refresh token against the stored one,
// issues a fresh access id + refresh pair, and tears down the old
// session including its snapshot. The new pair is written before the old
// keys are deleted so a crash cannot strand the caller sessionless.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, presented string) (string, string, error) {
	if blank(oldAccessID) || blank(presented) {
		return "", "", ErrInvalidRefreshToken
	}

	oldKey := m.keyer.AccessSessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, oldKey)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	nextAccessID := NewAccessID()
	nextSecret, err := mintRefreshSecret()
	if err != nil {
		return "", "", err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(nextAccessID), nextSecret, m.ttl); err != nil {
		return "", "", err
	}
	if err := m.store.Del(ctx, oldKey, m.keyer.CurrentUserKey(oldAccessID)); err != nil {
		return "", "", err
	}
	return nextAccessID, nextSecret, nil
}

// Revoke drops the session and its snapshot.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID), m.keyer.CurrentUserKey(accessID))
}

// CachePrincipal stores the session's principal snapshot.
func (m *Manager) CachePrincipal(ctx context.Context, accessID string, principal *models.Principal) error {
	if blank(accessID) {
		return fmt.Errorf("access id is required")
	}
	if principal == nil {
		return fmt.Errorf("principal is required")
	}
	encoded, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("encoding principal snapshot: %w", err)
	}
	return m.store.Set(ctx, m.keyer.CurrentUserKey(accessID), encoded, m.ttl)
}

// CachedPrincipal loads the snapshot; a cold cache is (nil, nil), not an
// error, so restore can fall through to the store.
func (m *Manager) CachedPrincipal(ctx context.Context, accessID string) (*models.Principal, error) {
	if blank(accessID) {
		return nil, nil
	}
	raw, err := m.store.Get(ctx, m.keyer.CurrentUserKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var principal models.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return nil, fmt.Errorf("decoding principal snapshot: %w", err)
	}
	return &principal, nil
}
