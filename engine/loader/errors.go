package loader

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a LoadError.
type ErrorKind int

const (
	// UnsupportedFormat means the locator suffix names no known backend.
	UnsupportedFormat ErrorKind = iota

	// NetworkFailure means the asset bytes could not be fetched.
	NetworkFailure

	// ParseFailure means the bytes were fetched but could not be decoded into a scene.
	ParseFailure
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case NetworkFailure:
		return "NetworkFailure"
	case ParseFailure:
		return "ParseFailure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ErrCancelled is returned by Load when its CancelToken was cancelled before the result
// could be handed back. Everything the load allocated has been disposed.
var ErrCancelled = errors.New("loader: load cancelled")

// LoadError is the recoverable failure of a single load. Callers may retry by loading
// the same descriptor again.
type LoadError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements error.
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *LoadError of the given kind.
//
// Parameters:
//   - err: the error to inspect
//   - kind: the kind to match
//
// Returns:
//   - bool: true when err wraps a LoadError with that kind
func IsKind(err error, kind ErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

func unsupported(format string, args ...any) *LoadError {
	return &LoadError{Kind: UnsupportedFormat, Message: fmt.Sprintf(format, args...)}
}

func networkFailure(err error, format string, args ...any) *LoadError {
	return &LoadError{Kind: NetworkFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func parseFailure(err error, format string, args ...any) *LoadError {
	return &LoadError{Kind: ParseFailure, Message: fmt.Sprintf(format, args...), Err: err}
}
