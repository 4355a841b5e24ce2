// Package ereaderrors defines the typed error taxonomy the engine returns to
// its host. Every host-facing operation returns either a result or an *Error
// carrying one of the Kind values below, so the host never has to pattern
// match on error strings.
package ereaderrors

import "fmt"

// Kind identifies the category of failure, mirroring the reader engine's
// error taxonomy.
type Kind int

const (
	// InvalidSettings means the settings JSON failed to deserialize or
	// violates a constraint (e.g. non-positive font size).
	InvalidSettings Kind = iota
	// ParseError means the book JSON was malformed or failed to parse.
	ParseError
	// NoBookLoaded means the operation requires a loaded Layout Document.
	NoBookLoaded
	// NotPaginated means the operation requires a Paginated Book.
	NotPaginated
	// PageNotFound means the requested page index is out of range.
	PageNotFound
	// FontError covers font load and rasterization failures, including
	// "no regular font for the active family".
	FontError
	// RenderError means an internal rasterization invariant was violated.
	RenderError
	// ImageError means an embedded image failed to decode.
	ImageError
	// SerializationError means JSON (de)serialization failed.
	SerializationError
	// HostSerializationError means the host-binding bridge failed to
	// marshal a result for delivery.
	HostSerializationError
)

// String renders the Kind the way it would appear in a log field or a
// host-facing error tag.
func (k Kind) String() string {
	switch k {
	case InvalidSettings:
		return "InvalidSettings"
	case ParseError:
		return "ParseError"
	case NoBookLoaded:
		return "NoBookLoaded"
	case NotPaginated:
		return "NotPaginated"
	case PageNotFound:
		return "PageNotFound"
	case FontError:
		return "FontError"
	case RenderError:
		return "RenderError"
	case ImageError:
		return "ImageError"
	case SerializationError:
		return "SerializationError"
	case HostSerializationError:
		return "HostSerializationError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every engine operation that
// can fail. Index is only meaningful for Kind == PageNotFound.
type Error struct {
	Kind  Kind
	Msg   string
	Index int
	Cause error
}

func (e *Error) Error() string {
	if e.Kind == PageNotFound {
		return fmt.Sprintf("%s: page %d: %s", e.Kind, e.Index, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause so callers can use errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// New builds a Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a Error wrapping an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// NewPageNotFound builds the PageNotFound(index) variant specified in spec.md §7.
func NewPageNotFound(index int) *Error {
	return &Error{Kind: PageNotFound, Index: index, Msg: "index out of range"}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
		return e.Kind == kind
	}
	return false
}
