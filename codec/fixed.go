package codec

// EncodeFixed appends the n-byte little-endian encoding of v to dst. n must
// be one of 1, 2, 3, 4 or 8; callers outside this package only ever reach
// this through the typed EncodeUint* wrappers below.
func EncodeFixed(dst []byte, v uint64, n int) []byte {
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

// DecodeFixed reads n little-endian bytes from the front of b.
func DecodeFixed(b []byte, n int) (uint64, int, error) {
	if len(b) < n {
		return 0, 0, newErr(Truncated, "fixed: need %d bytes, have %d", n, len(b))
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, n, nil
}

// EncodeUint8 encodes a single byte.
func EncodeUint8(dst []byte, v uint8) []byte { return EncodeFixed(dst, uint64(v), 1) }

// EncodeUint16 encodes 2 little-endian bytes.
func EncodeUint16(dst []byte, v uint16) []byte { return EncodeFixed(dst, uint64(v), 2) }

// EncodeUint24 encodes 3 little-endian bytes.
func EncodeUint24(dst []byte, v uint32) []byte { return EncodeFixed(dst, uint64(v), 3) }

// EncodeUint32 encodes 4 little-endian bytes.
func EncodeUint32(dst []byte, v uint32) []byte { return EncodeFixed(dst, uint64(v), 4) }

// EncodeUint64 encodes 8 little-endian bytes.
func EncodeUint64(dst []byte, v uint64) []byte { return EncodeFixed(dst, v, 8) }

// DecodeUint8 reads a single byte.
func DecodeUint8(b []byte) (uint8, int, error) {
	v, n, err := DecodeFixed(b, 1)
	return uint8(v), n, err
}

// DecodeUint16 reads 2 little-endian bytes.
func DecodeUint16(b []byte) (uint16, int, error) {
	v, n, err := DecodeFixed(b, 2)
	return uint16(v), n, err
}

// DecodeUint24 reads 3 little-endian bytes.
func DecodeUint24(b []byte) (uint32, int, error) {
	v, n, err := DecodeFixed(b, 3)
	return uint32(v), n, err
}

// DecodeUint32 reads 4 little-endian bytes.
func DecodeUint32(b []byte) (uint32, int, error) {
	v, n, err := DecodeFixed(b, 4)
	return uint32(v), n, err
}

// DecodeUint64 reads 8 little-endian bytes.
func DecodeUint64(b []byte) (uint64, int, error) {
	return DecodeFixed(b, 8)
}
