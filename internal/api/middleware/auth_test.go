package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
)

type stubAuth struct {
	users map[string]*domain.User
	err   error
}

func (s *stubAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, nil
}

func (s *stubAuth) Refresh(context.Context, *domain.User) (string, error) { return "", nil }

func (s *stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

func runAuth(t *testing.T, auth *stubAuth, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(auth)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	auth := &stubAuth{users: map[string]*domain.User{"good": {ID: 1, Username: "alice", Role: domain.RoleAdmin}}}

	called := false
	rec := runAuth(t, auth, "Bearer good", func(c echo.Context) error {
		called = true
		u, _ := c.Get(UserKey).(*domain.User)
		if u == nil || u.Username != "alice" {
			t.Fatalf("user not set")
		}
		if c.Get(RoleKey) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	auth := &stubAuth{users: map[string]*domain.User{}}
	next := func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-token"} {
		rec := runAuth(t, auth, header, next)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("header %q: expected WWW-Authenticate", header)
		}
	}
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	auth := &stubAuth{err: domain.ErrInactiveUser}
	rec := runAuth(t, auth, "Bearer x", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
