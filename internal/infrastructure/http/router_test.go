package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/infrastructure/db/memory"
)

type stubUpstream struct {
	err error
}

func (s *stubUpstream) Health(context.Context) (*domain.Health, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Health{Status: "healthy", Version: "1.0.0"}, nil
}

type stubSession struct {
	snap domain.Session
}

func (s *stubSession) Snapshot() domain.Session          { return s.snap }
func (s *stubSession) CurrentUser() (*domain.User, bool) { return s.snap.User, s.snap.User != nil }
func (s *stubSession) Authenticated() bool               { return s.snap.Authenticated() }
func (s *stubSession) Initializing() bool                { return false }

func newStatusRouter(upstream *stubUpstream, session *stubSession) http.Handler {
	return NewRouter(Options{
		Store:    memory.NewStore(),
		Upstream: upstream,
		Session:  session,
		Registry: prometheus.NewRegistry(),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus_Liveness(t *testing.T) {
	rec := get(newStatusRouter(&stubUpstream{}, &stubSession{}), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStatus_Readiness(t *testing.T) {
	rec := get(newStatusRouter(&stubUpstream{}, &stubSession{}), "/health/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	down := &stubUpstream{err: &domain.APIError{Kind: domain.KindNetwork, Message: "connection refused"}}
	rec = get(newStatusRouter(down, &stubSession{}), "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body readinessBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Status != "degraded" || body.Dependencies["store"].Status != "ok" || body.Dependencies["backend"].Status != "unhealthy" {
		t.Fatalf("unexpected readiness %+v", body)
	}
}

type readinessBody struct {
	Status       string `json:"status"`
	Dependencies map[string]struct {
		Status string `json:"status"`
	} `json:"dependencies"`
}

func TestStatus_SessionNeverExposesToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC()
	session := &stubSession{snap: domain.Session{
		User:      &domain.User{ID: 1, Username: "alice"},
		Token:     "secret-token",
		ExpiresAt: &exp,
	}}
	rec := get(newStatusRouter(&stubUpstream{}, session), "/session")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "secret-token") {
		t.Fatal("token leaked in /session")
	}
	if !strings.Contains(body, `"authenticated":true`) || !strings.Contains(body, `"username":"alice"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestStatus_Metrics(t *testing.T) {
	h := newStatusRouter(&stubUpstream{err: errors.New("x")}, &stubSession{})
	get(h, "/health")
	rec := get(h, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "defm_status_requests_total") {
		t.Fatalf("unexpected metrics output: %d", rec.Code)
	}
}
