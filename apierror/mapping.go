package apierror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 1 << 20

type statusMapping struct {
	kind    Kind
	message string
}

var statusMappings = map[int]statusMapping{
	http.StatusBadRequest:          {KindBadRequest, "Bad request"},
	http.StatusUnauthorized:        {KindAuthentication, "Unauthorized"},
	http.StatusForbidden:           {KindPermissionDenied, "Forbidden"},
	http.StatusNotFound:            {KindNotFound, "Not Found"},
	http.StatusConflict:            {KindConflict, "Conflict"},
	http.StatusUnprocessableEntity: {KindValidationFailed, "Validation failed"},
	http.StatusTooManyRequests:     {KindRateLimited, "Too Many Requests"},
}

// FromStatus builds the APIError for a non-2xx status and its body. The body
// is kept as Details when it decodes to a JSON object, and as ResponseText
// otherwise.
func FromStatus(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	switch m, ok := statusMappings[status]; {
	case ok:
		e.Kind, e.Message = m.kind, m.message
	case status >= 500 && status < 600:
		e.Kind, e.Message = KindServer, "Server error"
	default:
		e.Kind, e.Message = KindAPI, "Unexpected API error"
	}

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err == nil && payload != nil {
		e.Details = payload
	} else {
		e.ResponseText = string(body)
	}

	if e.Kind == KindValidationFailed && e.Details != nil {
		e.Validation = parseValidation(body)
	}

	return e
}

// parseValidation decodes a {"detail": [{loc, msg, type}]} body. Bodies of any
// other shape yield nil.
func parseValidation(body []byte) []ValidationDetail {
	var v struct {
		Detail []ValidationDetail `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v.Detail
}

// FromResponse reads resp's body and returns the matching *APIError. The
// caller still owns resp.Body and must close it.
func FromResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read error response (status %d): %w",
			resp.StatusCode, FromTransport(err))
	}
	return FromStatus(resp.StatusCode, body)
}

// FromTransport translates an error returned by the HTTP transport into a
// *TimeoutError or *NetworkError. Errors already translated pass through, as
// does a caller's cancellation.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}

	var (
		timeoutErr *TimeoutError
		networkErr *NetworkError
	)
	if errors.As(err, &timeoutErr) || errors.As(err, &networkErr) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Phase: timeoutPhase(err), Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	return &NetworkError{Err: err}
}

// timeoutPhase reports PhaseConnect when the timeout hit while dialing.
func timeoutPhase(err error) string {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return PhaseConnect
	}
	return PhaseRead
}
