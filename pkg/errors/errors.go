// Package errors provides structured error handling for widget rendering,
// persistence and delivery.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Sentinel errors shared across packages.
var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidConfig is returned when a payload is not a widget config object.
	ErrInvalidConfig = stderrors.New("invalid config")
	// ErrEmptyAction is returned when a tap carries no action name.
	ErrEmptyAction = stderrors.New("empty action")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindParsing indicates a config or queue decoding failure.
	KindParsing
	// KindStorage indicates a key-value persistence failure.
	KindStorage
	// KindNetwork indicates a remote fetch failure.
	KindNetwork
	// KindRender indicates a rendering error.
	KindRender
	// KindAction indicates a tap delivery or toggle failure.
	KindAction
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindParsing:
		return "parsing"
	case KindStorage:
		return "storage"
	case KindNetwork:
		return "network"
	case KindRender:
		return "render"
	case KindAction:
		return "action"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// WidgetError represents a structured error tied to an operation and,
// optionally, a widget group.
type WidgetError struct {
	// Op is the operation that failed (e.g., "store.File.Set").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Group is the widget group identifier, if applicable.
	Group string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *WidgetError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("%s [%s] group=%s: %v", e.Op, e.Kind, e.Group, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}

// New builds a WidgetError.
func New(op string, kind ErrorKind, group string, err error) *WidgetError {
	return &WidgetError{Op: op, Kind: kind, Group: group, Err: err}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "surface.Render").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to decode persisted or pushed data.
type ParseError struct {
	// Source names where the data came from (a store key, a file, a socket).
	Source string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
	// Err is the decoder error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s from %s: %v", e.DataType, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to parse %s from %s: got %T", e.DataType, e.Source, e.Got)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives reported errors.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *WidgetError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
