package coinspaid

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyKey         = errors.New("private key is empty")
	ErrInvalidConfig    = errors.New("invalid client configuration")
	ErrUnsupportedValue = errors.New("not supported value")
)

// Gateway error kinds, matched with errors.Is against an *Error
var (
	ErrSerialization      = errors.New("failed to serialize request")
	ErrTransport          = errors.New("request failed")
	ErrDecode             = errors.New("failed to deserialize response")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
)

// ErrorKind classifies a failed gateway call
type ErrorKind int

const (
	KindSerialization ErrorKind = iota + 1
	KindTransport
	KindDecode
	KindUnauthorized
	KindBadRequest
	KindInternalServer
	KindServiceUnavailable
	KindUnexpectedStatus
)

var kindSentinels = map[ErrorKind]error{
	KindSerialization:      ErrSerialization,
	KindTransport:          ErrTransport,
	KindDecode:             ErrDecode,
	KindUnauthorized:       ErrUnauthorized,
	KindBadRequest:         ErrBadRequest,
	KindInternalServer:     ErrInternalServer,
	KindServiceUnavailable: ErrServiceUnavailable,
	KindUnexpectedStatus:   ErrUnexpectedStatus,
}

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return "unknown"
}

// Error is returned for every failed gateway call.
// RequestBody is set for bad requests; Body carries the raw response text
// when the gateway returned one that was read.
type Error struct {
	Kind        ErrorKind
	Endpoint    Endpoint
	StatusCode  int
	RequestBody string
	Body        string
	Err         error
}

func (e *Error) Error() string {
	return e.prefix() + e.message()
}

func (e *Error) prefix() string {
	if _, ok := endpointNames[e.Endpoint]; ok {
		return e.Endpoint.String() + ": "
	}
	return ""
}

func (e *Error) message() string {
	switch e.Kind {
	case KindBadRequest:
		return fmt.Sprintf("received bad request status. Request: %q. Response: %q", e.RequestBody, e.Body)
	case KindUnexpectedStatus:
		return fmt.Sprintf("received response code %d: %q", e.StatusCode, e.Body)
	case KindDecode:
		if e.Body != "" {
			return fmt.Sprintf("%s %q: %v", e.Kind, e.Body, e.Err)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}
