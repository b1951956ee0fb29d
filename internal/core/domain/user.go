package domain

import "time"

const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleInvestigator = "investigator"
)

// User models an authenticated actor in the DEFM backend.
type User struct {
	ID        int64      `json:"id"         yaml:"id"`
	Username  string     `json:"username"   yaml:"username"`
	FullName  string     `json:"full_name"  yaml:"full_name"`
	Email     string     `json:"email"      yaml:"email"`
	Role      string     `json:"role"       yaml:"role"`
	IsActive  bool       `json:"is_active"  yaml:"is_active"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty" yaml:"last_login,omitempty"`
}

// UserCreate is the payload for POST /users.
type UserCreate struct {
	Username string `json:"username"  validate:"required,min=3"`
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role"      validate:"omitempty,oneof=admin manager investigator"`
	IsActive *bool  `json:"is_active,omitempty"`
	Password string `json:"password"  validate:"required,min=6"`
}

// UserUpdate is the payload for PUT /users/{id}. Nil fields are left unchanged.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"     validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"      validate:"omitempty,oneof=admin manager investigator"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Credentials is the payload of POST /auth/login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is the backend's login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
