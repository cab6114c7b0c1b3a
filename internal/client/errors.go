package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/sessions"
)

var (
	// ErrUnauthorized matches a 401 that was not (or could not be) answered
	// with a refresh, e.g. a failed login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired matches a 401 after recovery was attempted: the
	// refresh failed, no refresh token was stored, or the replay was
	// rejected again.
	ErrSessionExpired = errors.New("session expired")
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

const GenericErrorMessage = "Something went wrong. Please try again."

type Recovery int

const (
	RecoveryNone Recovery = iota
	// RecoveryFailed means no new token could be obtained.
	RecoveryFailed
	// RecoveryExhausted means the single replay with a new token failed too.
	RecoveryExhausted
)

func (r Recovery) String() string {
	switch r {
	case RecoveryFailed:
		return "failed"
	case RecoveryExhausted:
		return "exhausted"
	default:
		return "none"
	}
}

// TransportError is a failure to get any response from the server.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError is any non 2xx response, with the status and body exactly as
// the server sent them.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       models.ErrorBody
	Raw        []byte
	Recovery   Recovery
	// Cause is why recovery failed, when it did.
	Cause error
}

func newResponseError(req *Request, res *Response, recovery Recovery, cause error) *ResponseError {
	e := &ResponseError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: res.StatusCode,
		Raw:        res.Body,
		Recovery:   recovery,
		Cause:      cause,
	}
	// Not every error body is JSON; the raw bytes are kept either way.
	_ = json.Unmarshal(res.Body, &e.Body)
	return e
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if len(e.Body.Message) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, e.Body.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (recovery %s: %v)", msg, e.Recovery, e.Cause)
	}
	return msg
}

// Is keeps the pre and post recovery 401s apart. The refresh failure in
// Cause is deliberately not unwrapped so that a 401 from the refresh call
// does not make the outer error look recoverable.
func (e *ResponseError) Is(target error) bool {
	unauthorized := e.StatusCode == http.StatusUnauthorized
	switch target {
	case ErrUnauthorized:
		return unauthorized && e.Recovery == RecoveryNone
	case ErrSessionExpired:
		return unauthorized && e.Recovery != RecoveryNone
	case ErrNoRefreshToken:
		return errors.Is(e.Cause, ErrNoRefreshToken)
	case sessions.ErrSessionChanged:
		return errors.Is(e.Cause, sessions.ErrSessionChanged)
	}
	return false
}

// UserMessage turns err into something a form can show: the backend's own
// message when there is one, a generic sentence otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message()
	}

	var responseErr *ResponseError
	if errors.As(err, &responseErr) && len(responseErr.Body.Message) > 0 {
		return responseErr.Body.Message
	}

	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "Could not reach the server. Check your connection and try again."
	}

	return GenericErrorMessage
}
