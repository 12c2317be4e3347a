// Package crypto implements JIP-5 key derivation: deterministic validator
// secret seeds from a trivial index or an arbitrary 32-byte seed, Ed25519
// public key derivation, and the base32 alternative-name format the
// transport layer uses as a DNS-safe peer identifier.
package crypto

import "github.com/cockroachdb/errors"

// Tag identifies the category of key-derivation failure.
type Tag int

const (
	// InvalidIndex means a trivial-seed index did not fit in 32 bits.
	InvalidIndex Tag = iota
	// InvalidSeedLength means a derivation input was not exactly 32 bytes.
	InvalidSeedLength
	// InvalidKeyLength means a public key supplied for alt-name derivation
	// was not exactly 32 bytes.
	InvalidKeyLength
)

func (t Tag) String() string {
	switch t {
	case InvalidIndex:
		return "InvalidIndex"
	case InvalidSeedLength:
		return "InvalidSeedLength"
	case InvalidKeyLength:
		return "InvalidKeyLength"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every function in this package.
type Error struct {
	Tag   Tag
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return "crypto: " + e.Tag.String() + ": " + e.cause.Error()
	}
	return "crypto: " + e.Tag.String()
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(tag Tag, msg string, args ...interface{}) *Error {
	return &Error{Tag: tag, cause: errors.Newf(msg, args...)}
}

// Is reports whether err is a crypto.Error with the given tag.
func Is(err error, tag Tag) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag == tag
	}
	return false
}
