package apiclient

import (
	"context"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// UsersAPI wraps /users.
type UsersAPI struct{ c *Client }

// Me resolves the user owning the attached token.
func (u *UsersAPI) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, request{resource: "users", method: http.MethodGet, path: "users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) List(ctx context.Context, opts domain.ListOptions) ([]domain.User, error) {
	var out []domain.User
	err := u.c.do(ctx, request{resource: "users", method: http.MethodGet, path: "users", query: listQuery(opts)}, &out)
	return out, err
}

func (u *UsersAPI) Get(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, request{resource: "users", method: http.MethodGet, path: "users/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Create(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, request{resource: "users", method: http.MethodPost, path: "users", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Update(ctx context.Context, id int64, in domain.UserUpdate) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, request{resource: "users", method: http.MethodPut, path: "users/" + itoa(id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Delete(ctx context.Context, id int64) (*domain.StatusMessage, error) {
	var out domain.StatusMessage
	if err := u.c.do(ctx, request{resource: "users", method: http.MethodDelete, path: "users/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
