package core

import "fmt"

// ErrorKind classifies pipeline failures so the presentation boundary can
// map every kind to a status code and user message in one place.
type ErrorKind string

const (
	// KindConfiguration marks a missing or placeholder API token. No
	// network call is attempted for these.
	KindConfiguration ErrorKind = "configuration"
	// KindNetwork marks a transport-level failure (timeout, DNS,
	// connection refused) reaching the upstream API.
	KindNetwork ErrorKind = "network"
	// KindUpstream marks a non-2xx response from the upstream API.
	KindUpstream ErrorKind = "upstream"
	// KindDecode marks a response body that is not valid JSON.
	KindDecode ErrorKind = "decode"
	// KindSchema marks valid JSON without the expected series shape.
	KindSchema ErrorKind = "schema"
)

// Error is a pipeline failure tagged with its taxonomy kind. All kinds are
// terminal for the current request; nothing is retried.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged pipeline error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError tags an underlying error with a kind and a message.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
