package boardstore

import "fmt"

// Kind classifies a store error so callers can decide how to surface it:
// validation and permission failures are actionable by the user, not-found
// means the entity vanished underneath the client, transport covers
// everything network-shaped.
type Kind string

const (
	KindValidation Kind = "validation"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindTransport  Kind = "transport"
)

// Error is the typed error returned by every store command and gateway call
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

func newValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func newPermissionError(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func newNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func newTransportError(message string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: cause}
}

// KindOf returns the Kind of a store error, or an empty Kind for any other
// error value including nil
func KindOf(err error) Kind {
	if storeErr, ok := err.(*Error); ok {
		return storeErr.Kind
	}
	return ""
}
