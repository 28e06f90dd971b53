package source

import (
	"errors"
	"fmt"
)

// Failure kinds. Use errors.Is to classify an error returned by a source.
var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("decode failure")
)

// Error describes a failed upstream call.
type Error struct {
	Source string
	Kind   error
	// Status is the HTTP status for non-2xx responses, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: %v: http status %d", e.Source, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TransportError wraps err as a transport failure of source.
func TransportError(source string, err error) error {
	return &Error{Source: source, Kind: ErrTransport, Err: err}
}

// DecodeError wraps err as a decode failure of source.
func DecodeError(source string, err error) error {
	return &Error{Source: source, Kind: ErrDecode, Err: err}
}
