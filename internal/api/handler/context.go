package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/api/middleware"
	"github.com/defm/console/internal/core/domain"
)

// ctxActor extracts the user injected by the Auth middleware and performs a
// fast-fail check before any service call: its presence proves the
// middleware ran.
func ctxActor(c echo.Context) (domain.Actor, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return domain.Actor{
		User:      user,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a positive integer")
	}
	return id, nil
}

// listOptions reads skip/limit, defaulting limit to 100 like the backend.
func listOptions(c echo.Context) (domain.ListOptions, error) {
	opts := domain.ListOptions{Limit: 100}
	err := echo.QueryParamsBinder(c).
		Int("skip", &opts.Skip).
		Int("limit", &opts.Limit).
		BindError()
	if err != nil {
		return opts, echo.NewHTTPError(http.StatusUnprocessableEntity, "skip and limit must be integers")
	}
	return opts, nil
}

func sendDownload(c echo.Context, dl *domain.Download) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+dl.Filename+`"`)
	contentType := dl.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(http.StatusOK, contentType, dl.Content)
}
