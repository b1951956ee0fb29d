package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.Profile != "default" {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
	if filepath.Base(cfg.Store.SQLitePath) != "console.db" {
		t.Fatalf("unexpected sqlite path %q", cfg.Store.SQLitePath)
	}
	if cfg.Dev.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected dev token ttl %v", cfg.Dev.TokenTTL)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"DEFM_API_URL":   "https://defm.example.org",
		"DEFM_TIMEOUT":   "5s",
		"DEFM_STORE":     "redis",
		"DEFM_PROFILE":   "lab",
		"DEFM_STORE_TTL": "12h",
		"REDIS_DB":       "3",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "https://defm.example.org" || cfg.Timeout != 5*time.Second {
		t.Fatalf("unexpected client config %+v", cfg)
	}
	if cfg.Store.Driver != StoreRedis || cfg.Store.Profile != "lab" || cfg.Store.TTL != 12*time.Hour {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db %d", cfg.Redis.DB)
	}
}

func TestLoadFrom_RejectsUnknownStore(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"DEFM_STORE": "etcd"}))
	if err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}
