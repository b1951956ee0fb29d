package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/defm/console/internal/core/ports"
)

func TestStore_KeyFormat(t *testing.T) {
	s := NewStore(nil, "lab", 0)
	if got := s.key("token"); got != "defm:lab:token" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := NewStore(nil, "", 0).key("user"); got != "defm:default:user" {
		t.Fatalf("unexpected default profile key %q", got)
	}
}

func newMiniredisStore(t *testing.T, profile string, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Config{Addr: mr.Addr(), Profile: profile, TTL: ttl})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStore_GetSetDelete(t *testing.T) {
	s, mr := newMiniredisStore(t, "lab", 0)
	ctx := context.Background()

	if _, err := s.Get(ctx, ports.KeyToken); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Set(ctx, ports.KeyToken, "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if raw, err := mr.Get("defm:lab:token"); err != nil || raw != "abc" {
		t.Fatalf("unexpected raw value %q %v", raw, err)
	}
	if ttl := mr.TTL("defm:lab:token"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}

	v, err := s.Get(ctx, ports.KeyToken)
	if err != nil || v != "abc" {
		t.Fatalf("get: %q %v", v, err)
	}
	if err := s.Delete(ctx, ports.KeyToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, ports.KeyToken); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, ports.KeyToken); err != nil {
		t.Fatalf("deleting a missing key must succeed, got %v", err)
	}
}

func TestStore_TTLExpiresEntries(t *testing.T) {
	s, mr := newMiniredisStore(t, "lab", time.Minute)
	ctx := context.Background()

	if err := s.Set(ctx, ports.KeyUser, `{"id":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("defm:lab:user"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, ports.KeyUser); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected expired entry, got %v", err)
	}
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	lab := NewStore(client, "lab", 0)
	field := NewStore(client, "field", 0)
	if err := lab.Set(ctx, ports.KeyToken, "lab-token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := field.Get(ctx, ports.KeyToken); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected other profile to be empty, got %v", err)
	}
}

func TestOpen_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Open(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatal("expected Open to fail against a stopped server")
	}
}
