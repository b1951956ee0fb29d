package apiclient

import (
	"context"
	"net/http"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// AuthAPI wraps /auth.
type AuthAPI struct{ c *Client }

// Login exchanges credentials for a bearer token. It does not persist the
// token; that is the session service's job.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	var out domain.Token
	err := a.c.do(ctx, request{
		resource: "auth",
		method:   http.MethodPost,
		path:     "auth/login",
		body:     domain.Credentials{Username: username, Password: password},
		noAuth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh issues a new token for the currently authenticated user.
func (a *AuthAPI) Refresh(ctx context.Context) (*domain.Token, error) {
	var out domain.Token
	if err := a.c.do(ctx, request{resource: "auth", method: http.MethodPost, path: "auth/refresh"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Gateway adapts a Client to ports.SessionGateway.
type Gateway struct{ c *Client }

var _ ports.SessionGateway = Gateway{}

func NewGateway(c *Client) Gateway { return Gateway{c: c} }

func (g Gateway) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	return g.c.Auth.Login(ctx, username, password)
}

func (g Gateway) Me(ctx context.Context) (*domain.User, error) {
	return g.c.Users.Me(ctx)
}
