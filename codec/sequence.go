package codec

import "bytes"

// EncodeSequence appends natural(len(items)) followed by each item encoded
// in order with encodeElem.
func EncodeSequence[T any](dst []byte, items []T, encodeElem func([]byte, T) []byte) []byte {
	dst = EncodeNatural(dst, uint64(len(items)))
	for _, item := range items {
		dst = encodeElem(dst, item)
	}
	return dst
}

// DecodeSequence reads a natural count then that many elements with
// decodeElem, propagating the first element error unchanged.
func DecodeSequence[T any](b []byte, decodeElem func([]byte) (T, int, error)) ([]T, int, error) {
	count, n, err := DecodeNatural(b)
	if err != nil {
		return nil, 0, err
	}
	items := make([]T, 0, count)
	for i := uint64(0); i < count; i++ {
		item, m, err := decodeElem(b[n:])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		n += m
	}
	return items, n, nil
}

// CheckAscendingUint64 reports OrderingViolation if keys is not strictly
// ascending. Used by decoders of service-id-keyed maps (accounts,
// always-accumulate gas).
func CheckAscendingUint64(keys []uint64) error {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return newErr(OrderingViolation, "sequence: key %d at index %d is not strictly ascending after %d", keys[i], i, keys[i-1])
		}
	}
	return nil
}

// CheckAscendingBytes reports OrderingViolation if keys is not strictly
// ascending in lexicographic byte order. Used by decoders of raw-keyval
// stores (31-byte keys).
func CheckAscendingBytes(keys [][]byte) error {
	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i], keys[i-1]) <= 0 {
			return newErr(OrderingViolation, "sequence: byte key at index %d is not strictly ascending", i)
		}
	}
	return nil
}
