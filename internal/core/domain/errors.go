package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindServerError  ErrorKind = "server_error"
	KindNetwork      ErrorKind = "network"
	KindUnknown      ErrorKind = "unknown"
)

// Sentinels matched by *APIError through errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrUnknown      = errors.New("unknown error")
)

var kindSentinels = map[ErrorKind]error{
	KindUnauthorized: ErrUnauthorized,
	KindForbidden:    ErrForbidden,
	KindNotFound:     ErrNotFound,
	KindServerError:  ErrServerError,
	KindNetwork:      ErrNetwork,
	KindUnknown:      ErrUnknown,
}

// APIError is the classified failure of a single backend request.
// HTTPStatus is zero when no response was received.
type APIError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	// Detail is the message the server put in the response body, if any.
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, domain.ErrForbidden) match any Forbidden APIError.
func (e *APIError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindForStatus maps a non-2xx HTTP status to its failure kind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500 && status <= 599:
		return KindServerError
	default:
		return KindUnknown
	}
}

// KindOf returns the kind of err, or KindUnknown when err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// UserMessage turns a classified failure into the line a console shows.
func UserMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case KindUnauthorized:
		return "Your session has expired or is missing. Please log in again."
	case KindForbidden:
		return "Access restricted: your role does not allow this action."
	case KindNetwork:
		return "Unable to reach the DEFM backend: " + apiErr.Message
	default:
		return apiErr.Message
	}
}

// Backend-side errors used by the development backend.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrCaseNotFound       = errors.New("case not found")
	ErrEvidenceNotFound   = errors.New("evidence not found")
	ErrCustodyNotFound    = errors.New("chain of custody record not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrFileNotFound       = errors.New("evidence file not found")
	ErrSelfTransfer       = errors.New("cannot transfer custody to yourself")
	ErrNoIntegrityData    = errors.New("no file or hash information available")
	ErrPermissionDenied   = errors.New("not enough permissions")
	ErrTargetNotFound     = errors.New("target user not found")
)
