// Package apierror defines the errors returned by the SDK and maps HTTP
// responses and transport failures onto them.
package apierror

import (
	"errors"
	"fmt"
)

// Kind identifies the status-code bucket an APIError belongs to.
type Kind int

const (
	KindAPI Kind = iota // any other non-2xx status
	KindBadRequest
	KindAuthentication
	KindPermissionDenied
	KindNotFound
	KindConflict
	KindValidationFailed
	KindRateLimited
	KindServer
)

var (
	// ErrNoRefreshToken is returned when a refresh is needed but no refresh
	// token was configured.
	ErrNoRefreshToken = errors.New("no refresh token provided")

	// ErrInvalidAuthResponse is returned when the auth endpoint answers 2xx
	// without an access token.
	ErrInvalidAuthResponse = errors.New("auth response does not contain an access token")
)

// Kind sentinels. An *APIError matches its own kind and ErrAPI via errors.Is.
var (
	ErrAPI              = errors.New("api error")
	ErrBadRequest       = errors.New("bad request")
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrServer           = errors.New("server error")
)

var kindSentinels = map[Kind]error{
	KindAPI:              ErrAPI,
	KindBadRequest:       ErrBadRequest,
	KindAuthentication:   ErrAuthentication,
	KindPermissionDenied: ErrPermissionDenied,
	KindNotFound:         ErrNotFound,
	KindConflict:         ErrConflict,
	KindValidationFailed: ErrValidationFailed,
	KindRateLimited:      ErrRateLimited,
	KindServer:           ErrServer,
}

// String returns the kind's name.
func (k Kind) String() string {
	return kindSentinels[k].Error()
}

// ValidationDetail is one entry of a 422 response's "detail" list.
type ValidationDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string

	// Details holds the response body when it was a JSON object.
	Details map[string]any
	// ResponseText holds the raw body when it was not a JSON object.
	ResponseText string
	// Validation is set for 422 responses shaped {"detail": [...]}.
	Validation []ValidationDetail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrAPI or the sentinel of e's kind.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI || target == kindSentinels[e.Kind]
}

// TimeoutError reports that a request timed out. Phase is "connect" when the
// connection could not be established in time and "read" otherwise.
type TimeoutError struct {
	Phase string
	Err   error
}

func (e *TimeoutError) Error() string {
	if e.Phase == PhaseConnect {
		return "connection timed out"
	}
	return "read timed out"
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError reports a DNS, connection or protocol failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout phases.
const (
	PhaseConnect = "connect"
	PhaseRead    = "read"
)
