package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mvalledor/stocktrace-backend/api/responses"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(string) string
}

// AuthRateLimitPolicy throttles an auth surface along two dimensions:
// source IP and the (hashed) email in the request body. Either limit set
// to zero disables that dimension; a zero window disables the policy.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit guards login and signup against credential stuffing.
// Counters live in redis under fixed-window keys; the email dimension
// stores only a sha256 of the normalized address.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if blocked := checkIPDimension(ctx, w, r, policy, store, logg); blocked {
				return
			}
			if blocked := checkEmailDimension(ctx, w, r, policy, store, logg); blocked {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func checkIPDimension(ctx context.Context, w http.ResponseWriter, r *http.Request, policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) bool {
	if policy.ipLimit <= 0 {
		return false
	}
	ip := clientIP(r)
	if ip == "" {
		return false
	}

	key := store.RateLimitKey(fmt.Sprintf("ip:%s:%s", policy.name, ip))
	count, err := store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count > int64(policy.ipLimit) {
		blockRequest(ctx, logg, w, policy, "ip", count, policy.ipLimit, map[string]any{"ip": ip})
		return true
	}
	return false
}

func checkEmailDimension(ctx context.Context, w http.ResponseWriter, r *http.Request, policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) bool {
	if policy.emailLimit <= 0 {
		return false
	}

	// The body is needed again by the handler, so buffer and restore it.
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return true
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	email := emailFromPayload(payload)
	if email == "" {
		return false
	}
	digest := sha256.Sum256([]byte(email))
	emailHash := hex.EncodeToString(digest[:])

	key := store.RateLimitKey(fmt.Sprintf("email:%s:%s", policy.name, emailHash))
	count, err := store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count > int64(policy.emailLimit) {
		blockRequest(ctx, logg, w, policy, "email", count, policy.emailLimit, map[string]any{"email_hash": emailHash})
		return true
	}
	return false
}

func blockRequest(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, dimension string, count int64, limit int, extra map[string]any) {
	if logg != nil {
		fields := map[string]any{
			"policy":         policy.name,
			"dimension":      dimension,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		for k, v := range extra {
			fields[k] = v
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// clientIP prefers proxy headers over the socket address; the service
// runs behind a load balancer in every non-local deployment.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromPayload(payload []byte) string {
	var probe struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(probe.Email))
}
