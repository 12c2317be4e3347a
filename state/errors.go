// Package state implements the domain codec and data model shared by the
// rest of the core: service accounts, partial chain state, accumulation
// implications, work items and work packages. Every Encode method is
// bit-exact and every Decode method canonical, built directly on the
// primitives in package codec. See spec.md §3 and §4.2.
package state

import "github.com/Esscrypt/peanutbutterandjam-sub010/codec"

// Tag is re-exported so callers of this package don't need to import codec
// directly just to pattern-match on decode failures.
type Tag = codec.Tag

const (
	Truncated           = codec.Truncated
	Overflow            = codec.Overflow
	InvalidDiscriminant = codec.InvalidDiscriminant
	InvalidLength       = codec.InvalidLength
	OrderingViolation   = codec.OrderingViolation
	UnknownVariant      = codec.UnknownVariant
)

// Is reports whether err is a codec.Error with the given tag.
func Is(err error, tag Tag) bool { return codec.Is(err, tag) }
