package fraud

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse means the endpoint answered 2xx with no body. It is never a "safe" verdict.
var ErrEmptyResponse = errors.New("fraud check: empty response body")

// TransportError wraps failures to reach the endpoint or read its answer.
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fraud check: transport timeout: %v", e.Err)
	}
	return fmt.Sprintf("fraud check: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a non-2xx answer whose body could not be interpreted.
type ProtocolError struct {
	StatusCode int
	Status     string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("fraud check: unexpected status %s", e.Status)
}

// RemoteRejection is a non-2xx answer carrying a structured error from the service.
type RemoteRejection struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteRejection) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("fraud check: rejected with status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("fraud check: rejected with status %d: %s", e.StatusCode, e.Message)
}

type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fraud check: malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fraud check: malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindTransport         ErrorKind = "transport"
	KindProtocol          ErrorKind = "protocol"
	KindRemoteRejection   ErrorKind = "remote_rejection"
	KindEmptyResponse     ErrorKind = "empty_response"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindUnknown           ErrorKind = "unknown"
)

// KindOf classifies an error returned by a FraudChecker.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		transport *TransportError
		protocol  *ProtocolError
		rejection *RemoteRejection
		malformed *MalformedResponseError
	)

	switch {
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &protocol):
		return KindProtocol
	case errors.As(err, &rejection):
		return KindRemoteRejection
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.As(err, &malformed):
		return KindMalformedResponse
	default:
		return KindUnknown
	}
}
