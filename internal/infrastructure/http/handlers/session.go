package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// SessionHandler handles GET /session. The token itself is never exposed.
type SessionHandler struct {
	session ports.SessionReader
}

func NewSessionHandler(session ports.SessionReader) *SessionHandler {
	return &SessionHandler{session: session}
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Initializing  bool         `json:"initializing"`
	User          *domain.User `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

func (h *SessionHandler) Get(c echo.Context) error {
	snap := h.session.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: snap.Authenticated(),
		Initializing:  h.session.Initializing(),
		User:          snap.User,
		ExpiresAt:     snap.ExpiresAt,
	})
}
