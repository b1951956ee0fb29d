package ports

import (
	"context"

	"github.com/defm/console/internal/core/domain"
)

// SessionGateway is what the session service needs from the backend.
type SessionGateway interface {
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	// Me resolves the user owning the currently persisted token.
	Me(ctx context.Context) (*domain.User, error)
}

// SessionReader is the read-only view of the session handed to callers that
// must not change it.
type SessionReader interface {
	Snapshot() domain.Session
	CurrentUser() (*domain.User, bool)
	Authenticated() bool
	Initializing() bool
}

// SessionService owns login state.
type SessionService interface {
	SessionReader
	Initialize(ctx context.Context) error
	Login(ctx context.Context, username, password string) domain.LoginResult
	Logout(ctx context.Context)
}
