package update

import (
	"errors"
	"fmt"

	"github.com/adamancini/profup/internal/types"
)

// TransportError reports a failed request: malformed URL, DNS or connection
// failure, or a non-2xx status. It is never retried inside this package.
type TransportError struct {
	URL        string
	StatusCode int // zero when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("request failed: status %d", e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response body that does not match the expected
// grammar. The server bounced the request and it must be resent.
type ProtocolError struct {
	Service types.ServiceName
	Body    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("server bounced %s request, resend required (body %q)", e.Service, e.Body)
}

// IOError reports a local read or write failure during a download.
type IOError struct {
	Op   string // "open", "read", "write", "close"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether retrying the same call may succeed.
// Transport and local I/O failures are retryable; protocol errors are not.
func IsRetryable(err error) bool {
	var te *TransportError
	var ioe *IOError
	return errors.As(err, &te) || errors.As(err, &ioe)
}
