package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

const maxErrorBody = 64 << 10

// RequestDecorator mutates an outgoing request before it is sent. A returned
// error aborts the request with an Unknown failure.
type RequestDecorator func(req *http.Request) error

// BearerToken attaches the persisted token as "Authorization: Bearer <token>".
// The token is read from store on every request so a login or logout is seen
// by the very next call. No header is set when no token is persisted.
func BearerToken(store ports.KeyValueStore) RequestDecorator {
	return func(req *http.Request) error {
		token, err := store.Get(req.Context(), ports.KeyToken)
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// RequestID tags each request with a fresh X-Request-ID unless one is set.
func RequestID() RequestDecorator {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	}
}

// Classify turns a failed round trip into a *domain.APIError. resp is nil
// when no response was received; otherwise its body is read for the server's
// message and left for the caller to close.
func Classify(resp *http.Response, err error) error {
	if resp == nil {
		return classifyTransport(err)
	}

	detail := readDetail(resp.Body)
	msg := detail
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = resp.Status
	}
	return &domain.APIError{
		Kind:       domain.KindForStatus(resp.StatusCode),
		Message:    msg,
		HTTPStatus: resp.StatusCode,
		Detail:     detail,
		Err:        err,
	}
}

// classifyTransport handles errors raised before any response arrived.
// Caller cancellation is not a network fault and is reported as Unknown.
func classifyTransport(err error) error {
	if err == nil {
		err = errors.New("no response received")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.APIError{Kind: domain.KindNetwork, Message: transportMessage(err), Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &domain.APIError{Kind: domain.KindUnknown, Message: "request canceled", Err: err}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return &domain.APIError{Kind: domain.KindNetwork, Message: transportMessage(err), Err: err}
	default:
		return &domain.APIError{Kind: domain.KindUnknown, Message: err.Error(), Err: err}
	}
}

func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// readDetail extracts the server's message from an error body. The backend
// answers {"detail": "..."}, or {"detail": [{"msg": ...}]} for validation
// failures; {"error": "..."} is accepted too.
func readDetail(body io.Reader) string {
	if body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) > 0 {
		var s string
		if json.Unmarshal(envelope.Detail, &s) == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(envelope.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return envelope.Error
}
