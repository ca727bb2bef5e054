package config

import (
	"strings"
	"testing"
	"time"
)

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://user:pw@host:5432/db"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensure dsn: %v", err)
	}
	if cfg.DSN != "postgres://user:pw@host:5432/db" {
		t.Fatalf("explicit DSN must be untouched, got %q", cfg.DSN)
	}
}

func TestEnsureDSNAssemblesFromDiscreteVars(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "stocktrace",
		Password: "pw",
		Name:     "stocktrace",
		SSLMode:  "require",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensure dsn: %v", err)
	}
	for _, fragment := range []string{"postgres://", "stocktrace:pw@", "db.internal:5433", "/stocktrace", "sslmode=require"} {
		if !strings.Contains(cfg.DSN, fragment) {
			t.Fatalf("dsn %q missing %q", cfg.DSN, fragment)
		}
	}
}

func TestEnsureDSNReportsMissingVars(t *testing.T) {
	cfg := DBConfig{Host: "db.internal"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected missing var error")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error must name the missing vars, got %v", err)
	}
}

func TestRefreshTokenTTL(t *testing.T) {
	cfg := JWTConfig{RefreshTokenTTLMinutes: 90}
	if cfg.RefreshTokenTTL() != 90*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.RefreshTokenTTL())
	}

	cfg.RefreshTokenTTLMinutes = 0
	if cfg.RefreshTokenTTL() != 0 {
		t.Fatal("non-positive minutes must yield zero ttl")
	}
}

func TestAppEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "DEV"}).IsDev() {
		t.Fatal("expected dev match to be case insensitive")
	}
	if !(AppConfig{Env: "prod"}).IsProd() {
		t.Fatal("expected prod match")
	}
	if (AppConfig{Env: "dev"}).IsProd() {
		t.Fatal("dev must not report prod")
	}
}
