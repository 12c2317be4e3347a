package codec

// EncodeOptionalNone appends the single none-discriminant byte.
func EncodeOptionalNone(dst []byte) []byte {
	return append(dst, 0x00)
}

// EncodeOptionalSome appends the some-discriminant byte followed by encoded.
func EncodeOptionalSome(dst []byte, encoded []byte) []byte {
	dst = append(dst, 0x01)
	return append(dst, encoded...)
}

// DecodeOptionalDiscriminant reads the leading discriminant byte and reports
// whether a value follows. Callers decode the payload themselves immediately
// after, using the returned byte count (always 1) as their starting offset.
func DecodeOptionalDiscriminant(b []byte) (present bool, n int, err error) {
	if len(b) < 1 {
		return false, 0, newErr(Truncated, "optional: empty input")
	}
	switch b[0] {
	case 0x00:
		return false, 1, nil
	case 0x01:
		return true, 1, nil
	default:
		return false, 0, newErr(InvalidDiscriminant, "optional: discriminant byte 0x%02x", b[0])
	}
}
