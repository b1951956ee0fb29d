package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/defm/console/internal/api/metrics"
	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// SessionService implements ports.SessionService on top of a KeyValueStore
// and a SessionGateway.
type SessionService struct {
	store   ports.KeyValueStore
	gateway ports.SessionGateway
	log     zerolog.Logger

	// opMu serializes Initialize, Login and Logout.
	opMu sync.Mutex

	mu           sync.RWMutex
	session      domain.Session
	initializing bool

	ready     chan struct{}
	readyOnce sync.Once
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(store ports.KeyValueStore, gateway ports.SessionGateway, log zerolog.Logger) *SessionService {
	return &SessionService{
		store:        store,
		gateway:      gateway,
		log:          log,
		initializing: true,
		ready:        make(chan struct{}),
	}
}

// Initialize restores a persisted session. A persisted token is only trusted
// after the backend resolves it to a user; any failure clears both entries.
// The returned error reports storage failures only; the session is always
// left in a consistent state and Ready is closed either way.
func (s *SessionService) Initialize(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	defer s.markReady()

	token, err := s.store.Get(ctx, ports.KeyToken)
	if errors.Is(err, ports.ErrKeyNotFound) || (err == nil && token == "") {
		s.log.Debug().Msg("no persisted token, starting unauthenticated")
		s.setSession(domain.Session{})
		return nil
	}
	if err != nil {
		s.setSession(domain.Session{})
		return fmt.Errorf("initialize session: read token: %w", err)
	}

	user, err := s.gateway.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(domain.KindOf(err))).Msg("persisted token rejected, clearing session")
		s.setSession(domain.Session{})
		return s.clearPersisted(ctx)
	}

	if err := s.persistUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist current user")
	}
	s.setSession(newSession(user, token))
	s.log.Info().Str("username", user.Username).Msg("session restored")
	return nil
}

// Login authenticates against the backend, then resolves and stores the
// current user. On failure the previous session, persisted and in memory, is
// left as it was.
func (s *SessionService) Login(ctx context.Context, username, password string) domain.LoginResult {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	tok, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		s.log.Info().Err(err).Str("username", username).Msg("login rejected")
		return failedLogin(err)
	}
	if tok == nil || tok.AccessToken == "" {
		s.log.Warn().Str("username", username).Msg("login response carried no access token")
		return failedLogin(nil)
	}

	prior := s.snapshotPersisted(ctx)
	if err := s.store.Set(ctx, ports.KeyToken, tok.AccessToken); err != nil {
		s.log.Error().Err(err).Msg("failed to persist token")
		return failedLogin(nil)
	}

	user, err := s.gateway.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("current user lookup failed after login")
		s.restorePersisted(ctx, prior)
		return failedLogin(err)
	}

	if err := s.persistUser(ctx, user); err != nil {
		s.log.Error().Err(err).Msg("failed to persist current user")
		s.restorePersisted(ctx, prior)
		return failedLogin(nil)
	}

	s.setSession(newSession(user, tok.AccessToken))
	metrics.SessionLoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("login succeeded")
	return domain.LoginResult{Success: true, User: cloneUser(user)}
}

// Logout forgets the session locally. It cannot fail: storage errors are
// logged and the in-memory session is reset regardless. Navigation back to
// the login entry point is the caller's job.
func (s *SessionService) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.clearPersisted(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	s.setSession(domain.Session{})
	s.log.Info().Msg("logged out")
}

// Snapshot returns a copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	out.User = cloneUser(s.session.User)
	return out
}

func (s *SessionService) CurrentUser() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return nil, false
	}
	return cloneUser(s.session.User), true
}

// Token returns the validated token, or "" when unauthenticated.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// Initializing reports true until the first Initialize call returns.
func (s *SessionService) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

// Ready is closed once Initialize has returned.
func (s *SessionService) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionService) markReady() {
	s.mu.Lock()
	s.initializing = false
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *SessionService) setSession(sess domain.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	if sess.Authenticated() {
		metrics.SessionAuthenticated.Set(1)
	} else {
		metrics.SessionAuthenticated.Set(0)
	}
}

func (s *SessionService) persistUser(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.store.Set(ctx, ports.KeyUser, string(raw))
}

func (s *SessionService) clearPersisted(ctx context.Context) error {
	return errors.Join(
		s.store.Delete(ctx, ports.KeyToken),
		s.store.Delete(ctx, ports.KeyUser),
	)
}

// persistedEntry is a stored value captured before Login overwrites it.
type persistedEntry struct {
	value   string
	present bool
}

func (s *SessionService) snapshotPersisted(ctx context.Context) map[string]persistedEntry {
	out := make(map[string]persistedEntry, 2)
	for _, key := range []string{ports.KeyToken, ports.KeyUser} {
		v, err := s.store.Get(ctx, key)
		out[key] = persistedEntry{value: v, present: err == nil}
	}
	return out
}

func (s *SessionService) restorePersisted(ctx context.Context, prior map[string]persistedEntry) {
	for key, entry := range prior {
		var err error
		if entry.present {
			err = s.store.Set(ctx, key, entry.value)
		} else {
			err = s.store.Delete(ctx, key)
		}
		if err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to restore persisted session entry")
		}
	}
}

func failedLogin(err error) domain.LoginResult {
	metrics.SessionLoginsTotal.WithLabelValues("failure").Inc()
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return domain.LoginResult{Error: apiErr.Detail}
	}
	return domain.LoginResult{Error: domain.DefaultLoginError}
}

func newSession(user *domain.User, token string) domain.Session {
	return domain.Session{User: cloneUser(user), Token: token, ExpiresAt: TokenExpiry(token)}
}

// TokenExpiry reads the exp claim of a JWT without verifying it. It returns
// nil for opaque tokens.
func TokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
