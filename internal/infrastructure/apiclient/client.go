// Package apiclient is the single configured access point to the DEFM REST
// backend. Every outgoing request passes through the client's decorators
// (bearer credential, request id) and every failure is classified into a
// *domain.APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/defm/console/internal/api/metrics"
	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "defmctl"
	apiPrefix        = "/api/v1"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, without the /api/v1 prefix.
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout
	// when Timeout is set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
	// Decorators run after the bearer and request id decorators, in order.
	Decorators []RequestDecorator
}

// Client talks to the DEFM backend. Resource functions are grouped by
// backend resource in the exported fields.
type Client struct {
	root       *url.URL
	api        *url.URL
	hc         *http.Client
	userAgent  string
	bearer     RequestDecorator
	decorators []RequestDecorator
	log        zerolog.Logger

	Auth      *AuthAPI
	Users     *UsersAPI
	Cases     *CasesAPI
	Evidence  *EvidenceAPI
	Custody   *CustodyAPI
	Reports   *ReportsAPI
	AuditLogs *AuditAPI
}

// New builds a Client that reads the bearer token from store before each
// request. store may be nil, in which case no credential is ever attached.
func New(opt Options, store ports.KeyValueStore) (*Client, error) {
	addr := opt.BaseURL
	if addr == "" {
		addr = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(addr, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", addr)
	}

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if opt.HTTPClient != nil {
		clone := *opt.HTTPClient
		clone.Timeout = timeout
		hc = &clone
	}
	ua := opt.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	api := *u
	api.Path = strings.TrimRight(u.Path, "/") + apiPrefix + "/"

	decorators := append([]RequestDecorator{RequestID()}, opt.Decorators...)
	var bearer RequestDecorator
	if store != nil {
		bearer = BearerToken(store)
	}

	c := &Client{
		root:       u,
		api:        &api,
		hc:         hc,
		userAgent:  ua,
		bearer:     bearer,
		decorators: decorators,
		log:        opt.Logger,
	}
	c.Auth = &AuthAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Cases = &CasesAPI{c: c}
	c.Evidence = &EvidenceAPI{c: c}
	c.Custody = &CustodyAPI{c: c}
	c.Reports = &ReportsAPI{c: c}
	c.AuditLogs = &AuditAPI{c: c}
	return c, nil
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string { return c.root.String() }

// Health calls the backend's unauthenticated /health endpoint, which lives
// outside the API prefix. It sends no credential.
func (c *Client) Health(ctx context.Context) (*domain.Health, error) {
	var out domain.Health
	err := c.do(ctx, request{
		resource: "health",
		method:   http.MethodGet,
		url:      c.root.ResolveReference(&url.URL{Path: path.Join(c.root.Path, "/health")}),
		noAuth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// request describes one call. Exactly one of body, form or none is set.
type request struct {
	resource string
	method   string
	path     string
	// rawPath, when set, replaces path with an already escaped form.
	rawPath string
	url     *url.URL
	accept  string
	query   url.Values
	body    any
	form    *multipartFile
	noAuth  bool
}

type multipartFile struct {
	field    string
	filename string
	content  io.Reader
}

func (c *Client) endpoint(r request) *url.URL {
	u := r.url
	switch {
	case u != nil:
	case r.rawPath != "":
		raw := strings.TrimLeft(r.rawPath, "/")
		p, err := url.PathUnescape(raw)
		if err != nil {
			p = raw
		}
		u = c.api.ResolveReference(&url.URL{Path: p, RawPath: raw})
	default:
		u = c.api.ResolveReference(&url.URL{Path: strings.TrimLeft(r.path, "/")})
	}
	if len(r.query) > 0 {
		clone := *u
		clone.RawQuery = r.query.Encode()
		u = &clone
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.form != nil:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		part, err := mw.CreateFormFile(r.form.field, r.form.filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, r.form.content); err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		body = buf
		contentType = mw.FormDataContentType()
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r).String(), body)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	decorators := c.decorators
	if c.bearer != nil && !r.noAuth {
		decorators = append([]RequestDecorator{c.bearer}, decorators...)
	}
	for _, decorate := range decorators {
		if err := decorate(req); err != nil {
			return nil, fmt.Errorf("decorate request: %w", err)
		}
	}
	return req, nil
}

// send performs the request and returns the response only when it is 2xx.
// The caller owns the returned body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, &domain.APIError{Kind: domain.KindUnknown, Message: err.Error(), Err: err}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, Classify(nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, Classify(resp, nil)
	}
	return resp, nil
}

// do sends r and decodes a JSON response into out, which may be nil.
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(r, start, err) }()

	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// An empty 2xx body, such as a 204 after a delete, leaves out untouched.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domain.APIError{
			Kind:       domain.KindUnknown,
			Message:    "decode response: " + err.Error(),
			HTTPStatus: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}

// download sends r and returns the raw body as a Download.
func (c *Client) download(ctx context.Context, r request, fallbackName string) (dl *domain.Download, err error) {
	start := time.Now()
	defer func() { c.observe(r, start, err) }()

	if r.accept == "" {
		r.accept = "application/octet-stream, */*"
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(nil, err)
	}
	return &domain.Download{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (c *Client) observe(r request, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	metrics.ClientRequestsTotal.WithLabelValues(r.resource, r.method, outcome).Inc()
	metrics.ClientRequestDuration.WithLabelValues(r.resource, outcome).Observe(time.Since(start).Seconds())

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("resource", r.resource).
		Str("method", r.method).
		Str("path", c.endpoint(r).Path).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("backend request")
}

func filenameFrom(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return path.Base(params["filename"])
}

// pathSegment escapes one caller-supplied path segment. Empty and dot
// segments are refused so a call never leaves its endpoint.
func pathSegment(name, v string) (string, error) {
	switch v {
	case "", ".", "..":
		return "", &domain.APIError{Kind: domain.KindUnknown, Message: fmt.Sprintf("invalid %s %q", name, v)}
	}
	return url.PathEscape(v), nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
