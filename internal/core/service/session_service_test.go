package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newStubStore(kv ...string) *stubStore {
	s := &stubStore{data: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		s.data[kv[i]] = kv[i+1]
	}
	return s
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }
func (s *stubStore) Close() error               { return nil }

func (s *stubStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *stubStore) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

// stubGateway reads the token from the store on Me, like the real client does.
type stubGateway struct {
	store   *stubStore
	loginFn func(username, password string) (*domain.Token, error)
	meFn    func(token string) (*domain.User, error)
	meCalls int
}

func (g *stubGateway) Login(_ context.Context, username, password string) (*domain.Token, error) {
	return g.loginFn(username, password)
}

func (g *stubGateway) Me(ctx context.Context) (*domain.User, error) {
	g.meCalls++
	token, _ := g.store.Get(ctx, ports.KeyToken)
	return g.meFn(token)
}

var alice = &domain.User{ID: 1, Username: "validuser", FullName: "Alice Agent", Email: "a@defm.local", Role: domain.RoleInvestigator, IsActive: true}

func unauthorized(detail string) error {
	return &domain.APIError{Kind: domain.KindUnauthorized, HTTPStatus: http.StatusUnauthorized, Message: detail, Detail: detail}
}

// ---------------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------------

func TestInitialize_NoTokenSkipsNetwork(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{store: store, meFn: func(string) (*domain.User, error) {
		t.Fatal("Me must not be called without a persisted token")
		return nil, nil
	}}
	svc := NewSessionService(store, gw, zerolog.Nop())

	if !svc.Initializing() {
		t.Fatal("expected initializing before Initialize")
	}
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if svc.Initializing() || svc.Authenticated() {
		t.Fatal("expected settled, unauthenticated session")
	}
	select {
	case <-svc.Ready():
	default:
		t.Fatal("Ready must be closed after Initialize")
	}
}

func TestInitialize_ValidTokenRestoresSession(t *testing.T) {
	store := newStubStore(ports.KeyToken, "abc")
	gw := &stubGateway{store: store, meFn: func(token string) (*domain.User, error) {
		if token != "abc" {
			t.Fatalf("unexpected token %q", token)
		}
		return alice, nil
	}}
	svc := NewSessionService(store, gw, zerolog.Nop())

	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	u, ok := svc.CurrentUser()
	if !ok || u.Username != "validuser" || svc.Token() != "abc" {
		t.Fatalf("unexpected session %+v", svc.Snapshot())
	}

	var persisted domain.User
	if err := json.Unmarshal([]byte(store.value(ports.KeyUser)), &persisted); err != nil {
		t.Fatalf("persisted user: %v", err)
	}
	if persisted.ID != alice.ID {
		t.Fatalf("unexpected persisted user %+v", persisted)
	}
}

func TestInitialize_RejectedTokenClearsBothEntries(t *testing.T) {
	store := newStubStore(ports.KeyToken, "expired", ports.KeyUser, `{"id":1}`)
	gw := &stubGateway{store: store, meFn: func(string) (*domain.User, error) {
		return nil, unauthorized("Could not validate credentials")
	}}
	svc := NewSessionService(store, gw, zerolog.Nop())

	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if svc.Authenticated() {
		t.Fatal("expected unauthenticated")
	}
	if store.has(ports.KeyToken) || store.has(ports.KeyUser) {
		t.Fatal("expected both persisted entries to be cleared")
	}
}

func TestInitialize_NetworkFailureAlsoClears(t *testing.T) {
	store := newStubStore(ports.KeyToken, "abc", ports.KeyUser, `{"id":1}`)
	gw := &stubGateway{store: store, meFn: func(string) (*domain.User, error) {
		return nil, &domain.APIError{Kind: domain.KindNetwork, Message: "connection refused"}
	}}
	svc := NewSessionService(store, gw, zerolog.Nop())

	_ = svc.Initialize(context.Background())
	if store.has(ports.KeyToken) || store.has(ports.KeyUser) {
		t.Fatal("expected both persisted entries to be cleared")
	}
}

func TestInitialize_StoreReadErrorReported(t *testing.T) {
	store := newStubStore()
	store.getErr = errors.New("locked")
	gw := &stubGateway{store: store}
	svc := NewSessionService(store, gw, zerolog.Nop())

	if err := svc.Initialize(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if svc.Initializing() || svc.Authenticated() {
		t.Fatal("expected settled, unauthenticated session")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_Success(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{
		store: store,
		loginFn: func(u, p string) (*domain.Token, error) {
			if u != "validuser" || p != "validpass" {
				t.Fatalf("unexpected credentials %s/%s", u, p)
			}
			return &domain.Token{AccessToken: "t", TokenType: "bearer"}, nil
		},
		meFn: func(token string) (*domain.User, error) {
			if token != "t" {
				t.Fatalf("Me should see the new token, got %q", token)
			}
			return alice, nil
		},
	}
	svc := NewSessionService(store, gw, zerolog.Nop())

	res := svc.Login(context.Background(), "validuser", "validpass")
	if !res.Success || res.User == nil || res.User.Username != "validuser" {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.value(ports.KeyToken) != "t" {
		t.Fatalf("expected token 't' persisted, got %q", store.value(ports.KeyToken))
	}
	if !store.has(ports.KeyUser) || !svc.Authenticated() {
		t.Fatal("expected user persisted and session authenticated")
	}
}

func TestLogin_BadCredentialsUsesDetail(t *testing.T) {
	store := newStubStore(ports.KeyToken, "old", ports.KeyUser, `{"id":9}`)
	gw := &stubGateway{
		store: store,
		loginFn: func(string, string) (*domain.Token, error) {
			return nil, unauthorized("Invalid credentials")
		},
	}
	svc := NewSessionService(store, gw, zerolog.Nop())

	res := svc.Login(context.Background(), "baduser", "badpass")
	if res.Success || res.Error != "Invalid credentials" {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.value(ports.KeyToken) != "old" || store.value(ports.KeyUser) != `{"id":9}` {
		t.Fatal("prior persisted state must be untouched")
	}
	if gw.meCalls != 0 {
		t.Fatal("Me must not be called after a failed login")
	}
}

func TestLogin_NoDetailUsesDefaultMessage(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{store: store, loginFn: func(string, string) (*domain.Token, error) {
		return nil, &domain.APIError{Kind: domain.KindNetwork, Message: "connection refused"}
	}}
	svc := NewSessionService(store, gw, zerolog.Nop())

	res := svc.Login(context.Background(), "u", "p")
	if res.Error != domain.DefaultLoginError {
		t.Fatalf("expected default message, got %q", res.Error)
	}
}

func TestLogin_MeFailureRestoresPriorState(t *testing.T) {
	store := newStubStore(ports.KeyToken, "old")
	gw := &stubGateway{
		store:   store,
		loginFn: func(string, string) (*domain.Token, error) { return &domain.Token{AccessToken: "new"}, nil },
		meFn: func(string) (*domain.User, error) {
			return nil, &domain.APIError{Kind: domain.KindServerError, HTTPStatus: 500, Message: "Internal Server Error"}
		},
	}
	svc := NewSessionService(store, gw, zerolog.Nop())

	res := svc.Login(context.Background(), "validuser", "validpass")
	if res.Success || res.Error != domain.DefaultLoginError {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.value(ports.KeyToken) != "old" || store.has(ports.KeyUser) {
		t.Fatal("expected prior persisted state restored")
	}
	if svc.Authenticated() {
		t.Fatal("session must stay unauthenticated")
	}
}

func TestLogin_EmptyTokenFails(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{store: store, loginFn: func(string, string) (*domain.Token, error) { return &domain.Token{}, nil }}
	svc := NewSessionService(store, gw, zerolog.Nop())

	if res := svc.Login(context.Background(), "u", "p"); res.Success {
		t.Fatal("expected failure")
	}
	if store.has(ports.KeyToken) {
		t.Fatal("nothing should be persisted")
	}
}

func TestLogin_DecodesExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "validuser",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	store := newStubStore()
	gw := &stubGateway{
		store:   store,
		loginFn: func(string, string) (*domain.Token, error) { return &domain.Token{AccessToken: signed}, nil },
		meFn:    func(string) (*domain.User, error) { return alice, nil },
	}
	svc := NewSessionService(store, gw, zerolog.Nop())
	_ = svc.Login(context.Background(), "validuser", "validpass")

	snap := svc.Snapshot()
	if snap.ExpiresAt == nil || !snap.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, snap.ExpiresAt)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogout_ClearsEverything(t *testing.T) {
	store := newStubStore(ports.KeyToken, "abc")
	gw := &stubGateway{store: store, meFn: func(string) (*domain.User, error) { return alice, nil }}
	svc := NewSessionService(store, gw, zerolog.Nop())
	_ = svc.Initialize(context.Background())

	svc.Logout(context.Background())

	if svc.Authenticated() || svc.Token() != "" {
		t.Fatal("expected unauthenticated after logout")
	}
	if store.has(ports.KeyToken) || store.has(ports.KeyUser) {
		t.Fatal("expected both entries cleared")
	}
	if gw.meCalls != 1 {
		t.Fatalf("logout must not call the backend, Me called %d times", gw.meCalls)
	}
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	store := newStubStore(ports.KeyToken, "abc")
	gw := &stubGateway{store: store, meFn: func(string) (*domain.User, error) { return alice, nil }}
	svc := NewSessionService(store, gw, zerolog.Nop())
	_ = svc.Initialize(context.Background())

	snap := svc.Snapshot()
	snap.User.Username = "mallory"
	if u, _ := svc.CurrentUser(); u.Username != "validuser" {
		t.Fatal("snapshot must not alias internal state")
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if TokenExpiry("not-a-jwt") != nil {
		t.Fatal("expected nil expiry for opaque token")
	}
}
