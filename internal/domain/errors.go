package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a coordinate conversion failed.
type ErrorKind uint8

const (
	// NullInput means a coordinate string was absent where one was required.
	NullInput ErrorKind = iota + 1
	// InvalidFormat covers malformed tokens and out-of-range components.
	InvalidFormat
	// MalformedRecord means an array position had fewer than two elements.
	MalformedRecord
)

func (k ErrorKind) String() string {
	switch k {
	case NullInput:
		return "NullInput"
	case InvalidFormat:
		return "InvalidFormat"
	case MalformedRecord:
		return "MalformedRecord"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// CoordinateError is returned by every failing conversion in this package.
// Input holds the offending value as text; Err holds the underlying parse
// error when there was one.
type CoordinateError struct {
	Kind  ErrorKind
	Input string
	Err   error
}

// Sentinels for errors.Is. They match any CoordinateError of the same kind.
var (
	ErrNullInput       = &CoordinateError{Kind: NullInput}
	ErrInvalidFormat   = &CoordinateError{Kind: InvalidFormat}
	ErrMalformedRecord = &CoordinateError{Kind: MalformedRecord}
)

func (e *CoordinateError) Error() string {
	switch e.Kind {
	case NullInput:
		return "coordinate: null input"
	case MalformedRecord:
		if e.Input == "" {
			return "coordinate: malformed record"
		}
		return fmt.Sprintf("coordinate: malformed record: %s", e.Input)
	default:
		return fmt.Sprintf("coordinate: invalid format: coordinate=%s", e.Input)
	}
}

func (e *CoordinateError) Unwrap() error { return e.Err }

// Is reports whether target is a CoordinateError of the same kind.
func (e *CoordinateError) Is(target error) bool {
	t, ok := target.(*CoordinateError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first CoordinateError in err's chain, or 0
// when there is none.
func KindOf(err error) ErrorKind {
	var ce *CoordinateError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func invalidFormat(input string, cause error) error {
	return &CoordinateError{Kind: InvalidFormat, Input: input, Err: cause}
}
