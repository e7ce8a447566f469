package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failed call.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNetwork
	KindTimeout
	KindAuthRefresh
	KindHTTP
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrNetwork     = errors.New("network error")
	ErrTimeout     = errors.New("request timed out")
	ErrAuthRefresh = errors.New("token refresh failed")
	ErrHTTP        = errors.New("http error")
	ErrUnexpected  = errors.New("unexpected error")
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuthRefresh:
		return "auth_refresh"
	case KindHTTP:
		return "http"
	default:
		return "unexpected"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindAuthRefresh:
		return ErrAuthRefresh
	case KindHTTP:
		return ErrHTTP
	default:
		return ErrUnexpected
	}
}

// Error is returned by every call of the Client.
// StatusCode is set for KindHTTP and for refresh failures rejected by the server.
type Error struct {
	Err        error
	Op         string
	Message    string
	Kind       Kind
	StatusCode int
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func httpError(op string, status int, body []byte) *Error {
	return &Error{
		Kind:       KindHTTP,
		Op:         op,
		StatusCode: status,
		Message:    extractMessage(body, status),
	}
}

// transportError классифицирует ошибку транспорта (ответа нет)
func transportError(op string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Op: op, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnexpected, Op: op, Message: "request canceled", Err: err}
	default:
		return &Error{Kind: KindNetwork, Op: op, Message: "unable to reach server", Err: err}
	}
}

func unexpectedError(op, msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Op: op, Message: msg, Err: err}
}
