package binance

import (
	"errors"
	"fmt"
)

// Pre-send failures. Both leave no doubt that nothing reached the exchange.
var (
	ErrCircuitOpen        = errors.New("circuit breaker open")
	ErrMissingCredentials = errors.New("missing API credentials")
)

// TransportError is a network-level failure: DNS, connection refused,
// timeout, or a pre-send rejection.
//
// Sent distinguishes the two operationally different cases: when false,
// the request never left the process and the order certainly does not
// exist; when true, the request was handed to the transport and the
// outcome is unknown — the exchange may have accepted it even though the
// response never arrived. Callers must not assume a Sent failure means
// the order was not created.
type TransportError struct {
	Op   string
	Err  error
	Sent bool
}

func (e *TransportError) Error() string {
	if e.Sent {
		return fmt.Sprintf("%s: transport failure (outcome unknown): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: not sent: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a rejection by the exchange: any HTTP status >= 400, with the
// Binance error code and message extracted from the body when present. A
// malformed response body (on any status) is also an APIError — a broken
// payload is the exchange's failure, not a reason to crash.
type APIError struct {
	Code       int64
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%d]: %s (HTTP %d)", e.Code, e.Message, e.HTTPStatus)
}
