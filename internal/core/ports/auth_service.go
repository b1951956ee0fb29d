package ports

import (
	"context"

	"github.com/defm/console/internal/core/domain"
)

// AuthService issues and checks bearer tokens for the development backend.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// Refresh issues a new token for an already authenticated user.
	Refresh(ctx context.Context, user *domain.User) (string, error)
	// Authenticate resolves the user behind a bearer token.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
