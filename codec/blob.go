package codec

// EncodeBlob appends natural(len(v)) followed by v itself.
func EncodeBlob(dst []byte, v []byte) []byte {
	dst = EncodeNatural(dst, uint64(len(v)))
	return append(dst, v...)
}

// DecodeBlob reads a natural length then that many bytes. The returned slice
// aliases b; callers that retain it beyond the lifetime of b must copy it.
func DecodeBlob(b []byte) ([]byte, int, error) {
	length, n, err := DecodeNatural(b)
	if err != nil {
		return nil, 0, err
	}
	rest := b[n:]
	if uint64(len(rest)) < length {
		return nil, 0, newErr(Truncated, "blob: need %d bytes, have %d", length, len(rest))
	}
	return rest[:length], n + int(length), nil
}

// EncodeFixedBytes appends v verbatim, failing the caller's precondition
// silently would be wrong: callers must ensure len(v) matches the field's
// declared fixed width before calling this (e.g. a 32-byte hash, a 128-byte
// memo). Use DecodeFixedBytes to enforce the width on the way back in.
func EncodeFixedBytes(dst []byte, v []byte) []byte {
	return append(dst, v...)
}

// DecodeFixedBytes reads exactly n bytes, failing with InvalidLength if n
// bytes aren't available. The returned slice is a copy, safe to retain.
func DecodeFixedBytes(b []byte, n int) ([]byte, int, error) {
	if len(b) < n {
		return nil, 0, newErr(InvalidLength, "fixed-bytes: need %d bytes, have %d", n, len(b))
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return out, n, nil
}
