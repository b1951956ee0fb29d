package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
	"github.com/defm/console/internal/infrastructure/db/memory"
)

func newTestClient(t *testing.T, srv *httptest.Server, store ports.KeyValueStore) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Logger: zerolog.Nop()}, store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Decorators
// ---------------------------------------------------------------------------

func TestBearerToken_AttachesPersistedToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []domain.Case{})
	}))
	defer srv.Close()

	store := memory.NewStore()
	_ = store.Set(context.Background(), ports.KeyToken, "abc")
	c := newTestClient(t, srv, store)

	if _, err := c.Cases.List(context.Background(), domain.CaseFilter{}); err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if got != "Bearer abc" {
		t.Fatalf("expected 'Bearer abc', got %q", got)
	}
}

func TestBearerToken_NoTokenNoHeader(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []domain.Case{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	if _, err := c.Cases.List(context.Background(), domain.CaseFilter{}); err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if present {
		t.Fatal("expected no Authorization header")
	}
}

func TestBearerToken_ReadsTokenPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.User{ID: 1})
	}))
	defer srv.Close()

	ctx := context.Background()
	store := memory.NewStore()
	c := newTestClient(t, srv, store)

	_, _ = c.Users.Me(ctx)
	_ = store.Set(ctx, ports.KeyToken, "t1")
	_, _ = c.Users.Me(ctx)
	_ = store.Delete(ctx, ports.KeyToken)
	_, _ = c.Users.Me(ctx)

	want := []string{"", "Bearer t1", ""}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("request %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

type failingStore struct{ memory.Store }

func (*failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestBearerToken_StoreFailureIsUnknown(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &failingStore{})
	_, err := c.Users.Me(context.Background())
	if domain.KindOf(err) != domain.KindUnknown {
		t.Fatalf("expected unknown, got %v", err)
	}
	if called {
		t.Fatal("request should not have been sent")
	}
}

func TestRequestID_SetsHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := RequestID()(req); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID")
	}

	req.Header.Set("X-Request-ID", "fixed")
	_ = RequestID()(req)
	if req.Header.Get("X-Request-ID") != "fixed" {
		t.Fatal("existing X-Request-ID must be kept")
	}
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

func TestClassify_StatusKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.ErrorKind
	}{
		{http.StatusUnauthorized, domain.KindUnauthorized},
		{http.StatusForbidden, domain.KindForbidden},
		{http.StatusNotFound, domain.KindNotFound},
		{http.StatusInternalServerError, domain.KindServerError},
		{http.StatusBadGateway, domain.KindServerError},
		{http.StatusBadRequest, domain.KindUnknown},
		{http.StatusUnprocessableEntity, domain.KindUnknown},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		rec.WriteHeader(tc.status)
		err := Classify(rec.Result(), nil)
		if domain.KindOf(err) != tc.kind {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.kind, domain.KindOf(err))
		}
	}
}

func TestClassify_ForbiddenMatchesSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not enough permissions"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	_, err := c.Users.List(context.Background(), domain.ListOptions{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatus != http.StatusForbidden || apiErr.Detail != "Not enough permissions" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestClassify_ValidationDetailList(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusUnprocessableEntity)
	_, _ = rec.WriteString(`{"detail":[{"loc":["body","title"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`)

	var apiErr *domain.APIError
	if !errors.As(Classify(rec.Result(), nil), &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Detail != "field required; value is not a valid integer" {
		t.Fatalf("unexpected detail %q", apiErr.Detail)
	}
}

func TestClassify_NoBodyFallsBackToStatusText(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusNotFound)

	var apiErr *domain.APIError
	_ = errors.As(Classify(rec.Result(), nil), &apiErr)
	if apiErr.Detail != "" || apiErr.Message != "Not Found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestClassify_ConnectionRefusedIsNetwork(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c, err := New(Options{BaseURL: "http://" + addr, Timeout: time.Second, Logger: zerolog.Nop()}, memory.NewStore())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Cases.Dashboard(context.Background())
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	var apiErr *domain.APIError
	_ = errors.As(err, &apiErr)
	if apiErr.HTTPStatus != 0 {
		t.Fatalf("expected no status, got %d", apiErr.HTTPStatus)
	}
}

func TestClassify_TimeoutIsNetwork(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: zerolog.Nop()}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Cases.Dashboard(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestClassify_CallerCancelIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.DashboardData{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(t, srv, nil)
	if _, err := c.Cases.Dashboard(ctx); domain.KindOf(err) != domain.KindUnknown {
		t.Fatalf("expected unknown, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

func TestResourcePaths(t *testing.T) {
	type call struct{ method, path, query string }
	var got call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = call{r.Method, r.URL.Path, r.URL.RawQuery}
		switch {
		case strings.HasSuffix(r.URL.Path, "/evidence/7") && r.Method == http.MethodGet,
			strings.HasSuffix(r.URL.Path, "/cases/3"):
			writeJSON(w, http.StatusOK, map[string]any{"id": 1})
		case strings.Contains(r.URL.Path, "/audit-logs") || r.URL.Path == "/api/v1/chain-of-custody/evidence/4":
			writeJSON(w, http.StatusOK, []any{})
		default:
			writeJSON(w, http.StatusOK, map[string]any{})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := newTestClient(t, srv, memory.NewStore())

	steps := []struct {
		name string
		run  func() error
		want call
	}{
		{"cases get", func() error { _, err := c.Cases.Get(ctx, 3); return err }, call{"GET", "/api/v1/cases/3", ""}},
		{"evidence get", func() error { _, err := c.Evidence.Get(ctx, 7); return err }, call{"GET", "/api/v1/evidence/7", ""}},
		{"verify", func() error { _, err := c.Evidence.VerifyIntegrity(ctx, 7); return err }, call{"POST", "/api/v1/evidence/7/verify-integrity", ""}},
		{"chain", func() error { _, err := c.Custody.ForEvidence(ctx, 4); return err }, call{"GET", "/api/v1/chain-of-custody/evidence/4", ""}},
		{"transfer", func() error {
			_, err := c.Custody.Transfer(ctx, domain.TransferInput{EvidenceID: 4, TransferredTo: 2, Purpose: "lab"})
			return err
		}, call{"POST", "/api/v1/chain-of-custody/transfer", "evidence_id=4&purpose=lab&transferred_to=2"}},
		{"generate", func() error {
			_, err := c.Reports.Generate(ctx, 9, domain.DefaultGenerateOptions())
			return err
		}, call{"POST", "/api/v1/reports/generate/9", "format=pdf&include_custody=true&include_evidence=true&report_type=summary"}},
		{"recent default", func() error { _, err := c.AuditLogs.Recent(ctx, 0); return err }, call{"GET", "/api/v1/audit-logs/recent", "limit=50"}},
		{"entity", func() error { _, err := c.AuditLogs.ForEntity(ctx, "case", 3); return err }, call{"GET", "/api/v1/audit-logs/entity/case/3", ""}},
		{"delete user", func() error { _, err := c.Users.Delete(ctx, 5); return err }, call{"DELETE", "/api/v1/users/5", ""}},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got != s.want {
			t.Fatalf("%s: expected %+v, got %+v", s.name, s.want, got)
		}
	}
}

func TestLogin_SendsJSONCredentialsWithoutBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatal("login must not carry a bearer token")
		}
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if creds.Username != "validuser" || creds.Password != "validpass" {
			t.Fatalf("unexpected creds %+v", creds)
		}
		writeJSON(w, http.StatusOK, domain.Token{AccessToken: "t", TokenType: "bearer"})
	}))
	defer srv.Close()

	store := memory.NewStore()
	_ = store.Set(context.Background(), ports.KeyToken, "stale")
	c := newTestClient(t, srv, store)

	tok, err := c.Auth.Login(context.Background(), "validuser", "validpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.AccessToken != "t" {
		t.Fatalf("unexpected token %+v", tok)
	}
}

func TestEvidenceUpload_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		writeJSON(w, http.StatusOK, domain.FileUpload{Filename: hdr.Filename, FileSize: int64(len(b))})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	up, err := c.Evidence.Upload(context.Background(), 1, "disk.img", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.Filename != "disk.img" || up.FileSize != 7 {
		t.Fatalf("unexpected upload %+v", up)
	}
}

func TestEvidenceDownload_Binary(t *testing.T) {
	payload := []byte{0x00, 0xff, 0x10, '{'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="../disk.img"`)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	dl, err := c.Evidence.Download(context.Background(), 1)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(dl.Content) != string(payload) || dl.Filename != "disk.img" || dl.ContentType != "application/octet-stream" {
		t.Fatalf("unexpected download %+v", dl)
	}
}

func TestDownload_AcceptsBinary(t *testing.T) {
	var accepts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepts = append(accepts, r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("report"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	ctx := context.Background()
	if _, err := c.Evidence.Download(ctx, 1); err != nil {
		t.Fatalf("evidence download: %v", err)
	}
	if _, err := c.Reports.Download(ctx, 1); err != nil {
		t.Fatalf("report download: %v", err)
	}
	for _, a := range accepts {
		if strings.Contains(a, "application/json") || !strings.Contains(a, "application/octet-stream") {
			t.Fatalf("unexpected Accept %q", a)
		}
	}
}

func TestDelete_NoContentIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	if _, err := c.Cases.Delete(context.Background(), 3); err != nil {
		t.Fatalf("expected 204 to succeed, got %v", err)
	}
}

func TestAuditForEntity_StaysOnEndpoint(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, []domain.AuditLog{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, memory.NewStore())
	ctx := context.Background()

	if _, err := c.AuditLogs.ForEntity(ctx, "../../../admin", 1); err != nil {
		t.Fatalf("for entity: %v", err)
	}
	if _, err := c.AuditLogs.ForEntity(ctx, "case", 7); err != nil {
		t.Fatalf("for entity: %v", err)
	}
	want := []string{
		"/api/v1/audit-logs/entity/..%2F..%2F..%2Fadmin/1",
		"/api/v1/audit-logs/entity/case/7",
	}
	if len(paths) != len(want) {
		t.Fatalf("unexpected paths %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path %d: expected %q, got %q", i, want[i], paths[i])
		}
	}

	for _, bad := range []string{"", ".", ".."} {
		_, err := c.AuditLogs.ForEntity(ctx, bad, 1)
		if domain.KindOf(err) != domain.KindUnknown || err == nil {
			t.Fatalf("entity type %q: expected Unknown error, got %v", bad, err)
		}
	}
	if len(paths) != 2 {
		t.Fatalf("rejected entity types must not reach the server, got %v", paths)
	}
}

func TestHealth_UnauthenticatedOutsidePrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatal("health must not carry a bearer token")
		}
		writeJSON(w, http.StatusOK, domain.Health{Status: "healthy", Version: "1.0.0"})
	}))
	defer srv.Close()

	store := memory.NewStore()
	_ = store.Set(context.Background(), ports.KeyToken, "abc")
	c := newTestClient(t, srv, store)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.Status != "healthy" {
		t.Fatalf("unexpected health %+v", h)
	}
	if v, _ := store.Get(context.Background(), ports.KeyToken); v != "abc" {
		t.Fatal("health must not touch the token")
	}
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "not a url"}, nil); err == nil {
		t.Fatal("expected error")
	}
}
