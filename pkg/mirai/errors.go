package mirai

import (
	"errors"
	"fmt"

	"github.com/liteclaw/mirai/pkg/message"
)

// Code is the status code carried in the "code" field of gateway responses.
type Code int

const (
	CodeSuccess          Code = 0
	CodeWrongAuthKey     Code = 1
	CodeNoSuchBot        Code = 2
	CodeWrongSession     Code = 3
	CodeUnauthorized     Code = 4
	CodeNoSuchTarget     Code = 5
	CodeNoSuchFile       Code = 6
	CodePermissionDenied Code = 10
	CodeMuted            Code = 20
	CodeMessageTooLong   Code = 30
	CodeBadRequest       Code = 400
)

// String returns the gateway's meaning of the code.
func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "Success"
	case CodeWrongAuthKey:
		return "Wrong auth key"
	case CodeNoSuchBot:
		return "No such bot"
	case CodeWrongSession:
		return "Wrong session"
	case CodeUnauthorized:
		return "Session wasn't authorized"
	case CodeNoSuchTarget:
		return "No such target"
	case CodeNoSuchFile:
		return "No such file"
	case CodePermissionDenied:
		return "Bot permission denied"
	case CodeMuted:
		return "Bot was muted"
	case CodeMessageTooLong:
		return "Message is too long"
	case CodeBadRequest:
		return "Bad request"
	default:
		return "Unknown code"
	}
}

// APIError is a non-zero status code returned by the gateway.
type APIError struct {
	Code   Code
	Action string
	// Message is the "msg" field of the response, when the gateway sent one.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] [%s] %s", int(e.Code), e.Action, e.Code)
}

// HTTPError is a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// ErrorKind says which side of the connection an error came from.
type ErrorKind int

const (
	// KindServer covers gateway status codes, transport failures and
	// responses that could not be decoded.
	KindServer ErrorKind = iota + 1
	// KindClient covers misuse detected before a request is sent.
	KindClient
	// KindMessageBuilding covers messages that cannot be sent.
	KindMessageBuilding
)

func (k ErrorKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindMessageBuilding:
		return "message building"
	default:
		return "unknown"
	}
}

// Error is returned by every Client and Session operation.
type Error struct {
	Kind ErrorKind
	// Op is the gateway action that failed, e.g. "Sending" or "Verify".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mirai: %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func serverError(op string, err error) error {
	return &Error{Kind: KindServer, Op: op, Err: err}
}

func clientError(op string, err error) error {
	return &Error{Kind: KindClient, Op: op, Err: err}
}

func clientErrorf(op, format string, args ...any) error {
	return clientError(op, fmt.Errorf(format, args...))
}

// checkCode turns a gateway status code into an error.
func checkCode(code Code, action, msg string) error {
	if code == CodeSuccess {
		return nil
	}
	return serverError(action, &APIError{Code: code, Action: action, Message: msg})
}

// IsCode reports whether err carries the given gateway status code.
func IsCode(err error, code Code) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// KindOf classifies err. It returns 0 for errors that did not come from
// this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var buildErr *message.BuildError
	if errors.As(err, &buildErr) {
		return KindMessageBuilding
	}
	var unwrapErr *message.UnwrapError
	if errors.As(err, &unwrapErr) {
		return KindClient
	}
	return 0
}

// IsServer reports whether err came from the gateway side.
func IsServer(err error) bool { return KindOf(err) == KindServer }

// IsClient reports whether err was detected on the client side.
func IsClient(err error) bool { return KindOf(err) == KindClient }
