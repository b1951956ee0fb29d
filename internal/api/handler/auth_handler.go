package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         authentication
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  domain.Token
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := bind(c, &req); err != nil {
		return err
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
		}
		return err
	}

	return c.JSON(http.StatusOK, domain.Token{AccessToken: token, TokenType: "bearer"})
}

// Refresh issues a fresh token for the authenticated caller.
//
// @Summary      Refresh token
// @Tags         authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  domain.Token
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	token, err := h.authService.Refresh(c.Request().Context(), actor.User)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Token{AccessToken: token, TokenType: "bearer"})
}
