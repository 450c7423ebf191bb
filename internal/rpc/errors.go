package rpc

import (
	"errors"
	"fmt"
)

// Kind categorizes a failed call.
type Kind int

const (
	// KindTransport means the request never got a response (network down, timeout).
	KindTransport Kind = iota
	// KindRejected means the backend answered with a non-2xx status.
	KindRejected
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every failed call.
type Error struct {
	Kind       Kind
	Method     string
	Message    string
	Code       string // backend error code, only for KindRejected
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

func transportError(method string, cause error) *Error {
	return &Error{Kind: KindTransport, Method: method, Message: "request failed", Cause: cause}
}

func decodeError(method string, cause error) *Error {
	return &Error{Kind: KindDecode, Method: method, Message: "invalid response", Cause: cause}
}

// IsTransport reports whether err is an rpc transport failure.
func IsTransport(err error) bool {
	return isKind(err, KindTransport)
}

// IsRejected reports whether err is a backend rejection.
func IsRejected(err error) bool {
	return isKind(err, KindRejected)
}

func isKind(err error, kind Kind) bool {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind == kind
	}
	return false
}
