package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// AuthService issues HS256 tokens whose subject is the username, like the
// DEFM backend does.
type AuthService struct {
	users     ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	stored, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !stored.IsActive {
		return "", nil, domain.ErrInactiveUser
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, stored.ID, now); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(stored.Username)
	if err != nil {
		return "", nil, err
	}

	user := stored.User
	user.LastLogin = &now
	return token, &user, nil
}

func (s *AuthService) Refresh(_ context.Context, user *domain.User) (string, error) {
	return s.generateToken(user.Username)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	stored, err := s.users.FindUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !stored.IsActive {
		return nil, domain.ErrInactiveUser
	}
	user := stored.User
	return &user, nil
}

// HashPassword hashes a password for storage in a UserRepository.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SeedAdmin creates the "admin" account when it does not exist yet.
func SeedAdmin(ctx context.Context, users ports.UserRepository, password string) (*domain.User, error) {
	if stored, err := users.FindUserByUsername(ctx, "admin"); err == nil {
		u := stored.User
		return &u, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return users.CreateUser(ctx, &ports.StoredUser{
		User: domain.User{
			Username: "admin",
			Email:    "admin@defm.local",
			FullName: "System Administrator",
			Role:     domain.RoleAdmin,
			IsActive: true,
		},
		PasswordHash: hash,
	})
}

func (s *AuthService) generateToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
