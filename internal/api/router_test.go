package api

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
	"github.com/defm/console/internal/core/service"
	"github.com/defm/console/internal/infrastructure/apiclient"
	"github.com/defm/console/internal/infrastructure/db/memory"
)

type devEnv struct {
	repo    *memory.Backend
	store   *memory.Store
	client  *apiclient.Client
	session *service.SessionService
}

func newDevEnv(t *testing.T) *devEnv {
	t.Helper()
	repo := memory.NewBackend()
	if _, err := service.SeedAdmin(context.Background(), repo, "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	e := NewRouter(Options{
		Repo:       repo,
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		Version:    "test",
		Logger:     zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	store := memory.NewStore()
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, store)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	session := service.NewSessionService(store, apiclient.NewGateway(client), zerolog.Nop())
	return &devEnv{repo: repo, store: store, client: client, session: session}
}

func (env *devEnv) login(t *testing.T, username, password string) {
	t.Helper()
	res := env.session.Login(context.Background(), username, password)
	if !res.Success {
		t.Fatalf("login %s: %s", username, res.Error)
	}
}

func (env *devEnv) addUser(t *testing.T, username, role string) *domain.User {
	t.Helper()
	u, err := env.client.Users.Create(context.Background(), domain.UserCreate{
		Username: username,
		Email:    username + "@defm.local",
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Role:     role,
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func TestDevBackend_HealthAndLogin(t *testing.T) {
	env := newDevEnv(t)
	ctx := context.Background()

	h, err := env.client.Health(ctx)
	if err != nil || h.Status != "healthy" || h.Version != "test" {
		t.Fatalf("health: %+v %v", h, err)
	}

	res := env.session.Login(ctx, "admin", "wrong")
	if res.Success || res.Error != "Incorrect username or password" {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := env.store.Get(ctx, ports.KeyToken); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("failed login must not persist a token, got %v", err)
	}

	env.login(t, "admin", "admin123")
	user, ok := env.session.CurrentUser()
	if !ok || user.Username != "admin" || user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user %+v", user)
	}
	if env.session.Snapshot().ExpiresAt == nil {
		t.Fatal("expected token expiry to be decoded")
	}
}

func TestDevBackend_InitializeRestoresSession(t *testing.T) {
	env := newDevEnv(t)
	ctx := context.Background()
	env.login(t, "admin", "admin123")

	restarted := service.NewSessionService(env.store, apiclient.NewGateway(env.client), zerolog.Nop())
	if err := restarted.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !restarted.Authenticated() {
		t.Fatal("persisted token should restore the session")
	}

	if err := env.store.Set(ctx, ports.KeyToken, "forged"); err != nil {
		t.Fatalf("set: %v", err)
	}
	again := service.NewSessionService(env.store, apiclient.NewGateway(env.client), zerolog.Nop())
	_ = again.Initialize(ctx)
	if again.Authenticated() {
		t.Fatal("invalid token must leave the session empty")
	}
	if _, err := env.store.Get(ctx, ports.KeyToken); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("invalid token should be cleared, got %v", err)
	}
}

func TestDevBackend_UnauthenticatedRequest(t *testing.T) {
	env := newDevEnv(t)
	_, err := env.client.Cases.List(context.Background(), domain.CaseFilter{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "Not authenticated" {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestDevBackend_EvidenceLifecycle(t *testing.T) {
	env := newDevEnv(t)
	ctx := context.Background()
	env.login(t, "admin", "admin123")
	analyst := env.addUser(t, "analyst", domain.RoleInvestigator)

	c, err := env.client.Cases.Create(ctx, domain.CaseInput{Title: "Laptop theft", Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}
	if !strings.HasPrefix(c.CaseNumber, "CASE-") {
		t.Fatalf("unexpected case number %q", c.CaseNumber)
	}

	ev, err := env.client.Evidence.Create(ctx, domain.EvidenceInput{
		CaseID:       c.ID,
		Title:        "Disk image",
		EvidenceType: domain.EvidenceDigital,
	})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}

	if _, err := env.client.Evidence.VerifyIntegrity(ctx, ev.ID); err == nil {
		t.Fatal("verify without a file should fail")
	} else if domain.KindOf(err) != domain.KindUnknown || !strings.Contains(err.Error(), "No file or hash") {
		t.Fatalf("unexpected verify error: %v", err)
	}

	content := []byte("raw disk bytes")
	up, err := env.client.Evidence.Upload(ctx, ev.ID, "disk.img", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.FileSize != int64(len(content)) || up.FileHash == "" {
		t.Fatalf("unexpected upload %+v", up)
	}

	report, err := env.client.Evidence.VerifyIntegrity(ctx, ev.ID)
	if err != nil || !report.IntegrityVerified {
		t.Fatalf("verify: %+v %v", report, err)
	}

	dl, err := env.client.Evidence.Download(ctx, ev.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if dl.Filename != "disk.img" || !bytes.Equal(dl.Content, content) {
		t.Fatalf("unexpected download %q %q", dl.Filename, dl.Content)
	}

	chain, err := env.client.Custody.ForEvidence(ctx, ev.ID)
	if err != nil || len(chain) != 1 || chain[0].Action != "collected" {
		t.Fatalf("initial chain: %+v %v", chain, err)
	}

	rec, err := env.client.Custody.Transfer(ctx, domain.TransferInput{
		EvidenceID:    ev.ID,
		TransferredTo: analyst.ID,
		Location:      "Lab 2",
		Purpose:       "analysis",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rec.TransferredTo == nil || *rec.TransferredTo != analyst.ID {
		t.Fatalf("unexpected transfer %+v", rec)
	}

	admin, _ := env.session.CurrentUser()
	_, err = env.client.Custody.Transfer(ctx, domain.TransferInput{
		EvidenceID: ev.ID, TransferredTo: admin.ID, Location: "Lab", Purpose: "x",
	})
	if err == nil || !strings.Contains(err.Error(), "yourself") {
		t.Fatalf("self transfer should fail, got %v", err)
	}

	gen, err := env.client.Reports.Generate(ctx, c.ID, domain.DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.CaseNumber != c.CaseNumber || gen.GeneratedBy != admin.FullName {
		t.Fatalf("unexpected generated report %+v", gen)
	}
	file, err := env.client.Reports.Download(ctx, gen.ReportID)
	if err != nil || !bytes.Contains(file.Content, []byte(c.CaseNumber)) {
		t.Fatalf("report download: %v", err)
	}

	logs, err := env.client.AuditLogs.ForEntity(ctx, "evidence", ev.ID)
	if err != nil || len(logs) == 0 {
		t.Fatalf("entity audit: %d %v", len(logs), err)
	}
	recent, err := env.client.AuditLogs.Recent(ctx, 0)
	if err != nil || len(recent) == 0 {
		t.Fatalf("recent audit: %d %v", len(recent), err)
	}
}

func TestDevBackend_RoleRestrictions(t *testing.T) {
	env := newDevEnv(t)
	ctx := context.Background()
	env.login(t, "admin", "admin123")
	env.addUser(t, "ivan", domain.RoleInvestigator)
	c, err := env.client.Cases.Create(ctx, domain.CaseInput{Title: "Phishing"})
	if err != nil {
		t.Fatalf("create case: %v", err)
	}

	env.session.Logout(ctx)
	env.login(t, "ivan", "password1")

	if _, err := env.client.Users.List(ctx, domain.ListOptions{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("users list: expected Forbidden, got %v", err)
	}
	if _, err := env.client.Cases.Delete(ctx, c.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("case delete: expected Forbidden, got %v", err)
	}
	if _, err := env.client.AuditLogs.Recent(ctx, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("recent audit: expected Forbidden, got %v", err)
	}
	if _, err := env.client.Cases.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing case: expected NotFound, got %v", err)
	}

	me, err := env.client.Users.Me(ctx)
	if err != nil || me.Username != "ivan" {
		t.Fatalf("me: %+v %v", me, err)
	}
	if _, err := env.client.AuditLogs.ForUser(ctx, me.ID, domain.ListOptions{}); err != nil {
		t.Fatalf("own audit trail: %v", err)
	}
}
