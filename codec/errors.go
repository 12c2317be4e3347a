// Package codec implements the canonical primitive binary codec shared by
// the rest of the JAM core: variable-length naturals, fixed-length
// integers, length-prefixed blobs, optionals, and variable sequences. See
// spec.md §4.1 and §6 for the exact byte layout; every encoder here is
// required to be bit-exact and every decoder canonical (non-minimal or
// out-of-order inputs are rejected, never silently accepted).
package codec

import "github.com/cockroachdb/errors"

// Tag identifies the category of codec failure. The set is closed: callers
// pattern-match on Tag rather than on error string contents.
type Tag int

const (
	// Truncated means fewer bytes remained than the encoding required.
	Truncated Tag = iota
	// Overflow means a decoded natural exceeds 2^64-1.
	Overflow
	// InvalidDiscriminant means an Optional's leading byte was neither 0x00 nor 0x01.
	InvalidDiscriminant
	// InvalidLength means a fixed-length field (e.g. a 128-byte memo) had the wrong length.
	InvalidLength
	// OrderingViolation means a map/set/natural was not in canonical ascending/minimal form.
	OrderingViolation
	// UnknownVariant means a tagged union's discriminant did not match any known variant.
	UnknownVariant
)

func (t Tag) String() string {
	switch t {
	case Truncated:
		return "Truncated"
	case Overflow:
		return "Overflow"
	case InvalidDiscriminant:
		return "InvalidDiscriminant"
	case InvalidLength:
		return "InvalidLength"
	case OrderingViolation:
		return "OrderingViolation"
	case UnknownVariant:
		return "UnknownVariant"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every decode function in this
// package and in the state package built on top of it.
type Error struct {
	Tag   Tag
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return "codec: " + e.Tag.String() + ": " + e.cause.Error()
	}
	return "codec: " + e.Tag.String()
}

func (e *Error) Unwrap() error { return e.cause }

// newErr builds an *Error, wrapping msg with cockroachdb/errors so that
// later %+v formatting can recover a stack trace from the failure site.
func newErr(tag Tag, msg string, args ...interface{}) *Error {
	return &Error{Tag: tag, cause: errors.Newf(msg, args...)}
}

// NewError builds a codec *Error with the given tag. Exported for the state
// package and other C2-level domain decoders, which surface the same closed
// CodecError taxonomy as this package rather than inventing their own.
func NewError(tag Tag, msg string, args ...interface{}) *Error {
	return newErr(tag, msg, args...)
}

// Is reports whether err is a codec.Error with the given tag. It lets
// callers write `codec.Is(err, codec.Truncated)` instead of type-asserting.
func Is(err error, tag Tag) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag == tag
	}
	return false
}
