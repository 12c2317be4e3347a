package codec

import (
	"github.com/holiman/uint256"
)

// maxNaturalLen is the longest possible encoding of a natural: one prefix
// byte plus up to 8 little-endian data bytes (spec.md §4.1).
const maxNaturalLen = 9

// leadingOnes returns the number of leading 1-bits in b, in [0,8].
func leadingOnes(b byte) int {
	n := 0
	for n < 8 && b&(0x80>>n) != 0 {
		n++
	}
	return n
}

// minimalExtraBytes returns the smallest n in [0,8] such that v fits the
// n-extra-byte encoding, i.e. v < 2^(7*(n+1)) for n<8, or n=8 (full 8 bytes)
// otherwise. This mirrors EncodeNatural's own choice of prefix shape and is
// used by DecodeNatural to reject non-minimal (non-canonical) encodings.
func minimalExtraBytes(v uint64) int {
	for n := 0; n < 8; n++ {
		if v < (uint64(1) << uint(7*(n+1))) {
			return n
		}
	}
	return 8
}

// EncodeNatural appends the canonical variable-length encoding of v to dst
// and returns the extended slice. See spec.md §4.1 for the exact layout:
// one prefix byte (n leading 1-bits, then a 0 separator unless n==8, then
// 7-n data bits) followed by n little-endian data bytes.
func EncodeNatural(dst []byte, v uint64) []byte {
	n := minimalExtraBytes(v)
	if n == 8 {
		dst = append(dst, 0xff)
		for i := 0; i < 8; i++ {
			dst = append(dst, byte(v>>(8*uint(i))))
		}
		return dst
	}
	high := v >> uint(8*n)
	prefixBase := byte(0x100 - (1 << uint(8-n)))
	dst = append(dst, prefixBase+byte(high))
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

// EncodeNaturalBytes is a convenience wrapper returning a fresh slice.
func EncodeNaturalBytes(v uint64) []byte {
	return EncodeNatural(nil, v)
}

// DecodeNatural decodes a canonical natural from the front of b, returning
// the value and the number of bytes consumed. It fails with Truncated if b
// is too short, with Overflow if the reconstructed value cannot be
// represented in 64 bits, and with OrderingViolation if the encoding is not
// the minimal (canonical) form for the decoded value — including the
// shortest-form rule from spec.md §6.
func DecodeNatural(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, newErr(Truncated, "natural: empty input")
	}
	n := leadingOnes(b[0])
	if n == 8 {
		if len(b) < 9 {
			return 0, 0, newErr(Truncated, "natural: need 8 bytes after 0xff prefix, have %d", len(b)-1)
		}
		acc := new(uint256.Int)
		for i := 7; i >= 0; i-- {
			acc.Lsh(acc, 8)
			acc.Or(acc, uint256.NewInt(uint64(b[1+i])))
		}
		if !acc.IsUint64() {
			return 0, 0, newErr(Overflow, "natural: value exceeds 2^64-1")
		}
		v := acc.Uint64()
		if minimalExtraBytes(v) != 8 {
			return 0, 0, newErr(OrderingViolation, "natural: non-minimal 9-byte encoding of %d", v)
		}
		return v, 9, nil
	}
	if len(b) < 1+n {
		return 0, 0, newErr(Truncated, "natural: need %d data bytes, have %d", n, len(b)-1)
	}
	dataBits := byte(7 - n)
	mask := byte(0)
	if dataBits > 0 {
		mask = (1 << dataBits) - 1
	}
	high := uint64(b[0] & mask)

	acc := new(uint256.Int).SetUint64(high)
	acc.Lsh(acc, uint(8*n))
	low := new(uint256.Int)
	for i := n - 1; i >= 0; i-- {
		low.Lsh(low, 8)
		low.Or(low, uint256.NewInt(uint64(b[1+i])))
	}
	acc.Or(acc, low)
	if !acc.IsUint64() {
		return 0, 0, newErr(Overflow, "natural: value exceeds 2^64-1")
	}
	v := acc.Uint64()
	if minimalExtraBytes(v) != n {
		return 0, 0, newErr(OrderingViolation, "natural: non-minimal %d-extra-byte encoding of %d", n, v)
	}
	return v, 1 + n, nil
}
