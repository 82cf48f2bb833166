package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if cfg.Port != "8080" || cfg.StorageDriver != "mongo" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute || cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token TTLs: %+v", cfg.Auth)
	}
	if cfg.Auth.RevokeFamilyOnReuse {
		t.Fatalf("family revocation must default to off")
	}
	if cfg.RabbitMQ.Queue != "auth.events" {
		t.Fatalf("unexpected queue %q", cfg.RabbitMQ.Queue)
	}
}

func TestProcess_RequiresSecret(t *testing.T) {
	if _, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                     "x",
		"ACCESS_TOKEN_TTL":               "5m",
		"REFRESH_REVOKE_FAMILY_ON_REUSE": "true",
		"STORAGE_DRIVER":                 "memory",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if cfg.Auth.AccessTokenTTL != 5*time.Minute || !cfg.Auth.RevokeFamilyOnReuse || cfg.StorageDriver != "memory" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
