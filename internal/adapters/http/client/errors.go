package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every error returned by Client unwraps to exactly one of them.
var (
	// ErrApplication means the backend answered but refused the operation.
	ErrApplication = errors.New("request rejected")
	// ErrConflict means the backend answered 409.
	ErrConflict = errors.New("conflict")
	// ErrValidation means the backend rejected individual form fields.
	ErrValidation = errors.New("validation failed")
	// ErrTransport means no usable answer came back.
	ErrTransport = errors.New("network error, try again")
)

// TransportMessage is shown to the user for transport failures.
const TransportMessage = "network error, try again"

// APIError carries the details of a failed backend call.
type APIError struct {
	Op      string
	Status  int
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	b.WriteString(": ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.Error())
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
		}
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind builds an APIError of the given kind.
func NewKind(op string, kind error, status int, message string) *APIError {
	return &APIError{Op: op, Status: status, Kind: kind, Message: message}
}

// WrapKind attaches op and kind to err. A nil err stays nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Op: op, Kind: kind, Err: err}
}

// Wrap prefixes err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Message returns the text a user should see for err: the server's own
// message when it sent one, a fixed retry hint for transport failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrTransport) {
		return TransportMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if len(apiErr.Fields) > 0 {
			return apiErr.Error()
		}
		return apiErr.Kind.Error()
	}
	return err.Error()
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
