package shell

import (
	"fmt"
)

// ErrorKind classifies a generation failure.
type ErrorKind int

const (
	KindInvalidDimension ErrorKind = iota + 1 // non-positive or inconsistent length/height/overhang
	KindLevelNotFound                         // named level absent from the host
	KindTypeNotFound                          // family type absent from the host catalog
	KindMissingRoofType                       // no usable roof type for the selected strategy
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDimension:
		return "invalid dimension"
	case KindLevelNotFound:
		return "level not found"
	case KindTypeNotFound:
		return "type not found"
	case KindMissingRoofType:
		return "missing roof type"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the typed failure returned by every operation in this package and
// by host adapters. Match on kind with errors.Is and the Err* sentinels.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that detected the problem, e.g. "corners"
	Message string
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "shell: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when target is a bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Message != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidDimension = &Error{Kind: KindInvalidDimension}
	ErrLevelNotFound    = &Error{Kind: KindLevelNotFound}
	ErrTypeNotFound     = &Error{Kind: KindTypeNotFound}
	ErrMissingRoofType  = &Error{Kind: KindMissingRoofType}
)

func invalidDimension(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidDimension, Op: op, Message: fmt.Sprintf(format, args...)}
}

// LevelNotFound builds the error a host returns for an unknown level.
func LevelNotFound(name string) *Error {
	return &Error{Kind: KindLevelNotFound, Op: "level", Message: fmt.Sprintf("no level named %q", name)}
}

// TypeNotFound builds the error a host returns for an unknown family type.
func TypeNotFound(category, typeName, familyName string) *Error {
	return &Error{
		Kind:    KindTypeNotFound,
		Op:      "type",
		Message: fmt.Sprintf("no %s type %q in family %q", category, typeName, familyName),
	}
}
