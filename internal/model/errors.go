package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
)

// ErrorKind categorizes a failed remote call
type ErrorKind string

const (
	KindNetwork         ErrorKind = "network"
	KindTimeout         ErrorKind = "timeout"
	KindNotFound        ErrorKind = "not_found"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindDecode          ErrorKind = "decode"
	KindUnknown         ErrorKind = "unknown"
)

// Sentinels for errors.Is; an *Error matches the sentinel of its kind
var (
	ErrNetwork         = errors.New("network error")
	ErrTimeout         = errors.New("request timed out")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrDecode          = errors.New("unexpected response shape")
	ErrUnknown         = errors.New("unknown error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindNotFound:
		return ErrNotFound
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindDecode:
		return ErrDecode
	default:
		return ErrUnknown
	}
}

// Error is a classified failure of a remote operation
type Error struct {
	Op      string    // operation that failed, e.g. "cars.GetByID"
	Kind    ErrorKind // taxonomy member
	Status  int       // HTTP status when the server answered
	Message string    // message for display
	Err     error     // underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// NewError creates a classified error without an underlying cause
func NewError(op string, kind ErrorKind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// AsError wraps err into an *Error, classifying it when it is not one
// already. It returns nil for a nil error.
func AsError(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			c := *e
			c.Op = op
			return &c
		}
		return e
	}

	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// KindOf categorizes an arbitrary error into the taxonomy
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindDecode
	}

	return KindUnknown
}

// StatusKind maps a non-2xx HTTP status to the taxonomy
func StatusKind(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthenticated
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}
