package codec

import (
	"bytes"
	"testing"
)

func TestEncodeNatural(t *testing.T) {
	tests := []struct {
		name string
		val  uint64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"127", 127, []byte{0x7f}},
		{"128", 128, []byte{0x80, 0x80}},
		{"255", 255, []byte{0x80, 0xff}},
		{"max-uint64", 1<<64 - 1, append([]byte{0xff}, bytes.Repeat([]byte{0xff}, 8)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeNaturalBytes(tt.val)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("%s: got %x, want %x", tt.name, got, tt.want)
			}
		})
	}
}

func TestDecodeNaturalRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 126, 127, 128, 129, 16383, 16384, 1 << 20, 1 << 40, 1<<64 - 1}
	for _, v := range vals {
		enc := EncodeNaturalBytes(v)
		got, n, err := DecodeNatural(enc)
		if err != nil {
			t.Fatalf("decode(%d): unexpected error %v", v, err)
		}
		if got != v {
			t.Fatalf("decode(%d): got %d", v, got)
		}
		if n != len(enc) {
			t.Fatalf("decode(%d): consumed %d, want %d", v, n, len(enc))
		}
	}
}

func TestDecodeNaturalTruncated(t *testing.T) {
	tests := [][]byte{
		{},
		{0x80},
		{0xff, 0x01, 0x02},
	}
	for _, b := range tests {
		_, _, err := DecodeNatural(b)
		if !Is(err, Truncated) {
			t.Fatalf("input %x: expected Truncated, got %v", b, err)
		}
	}
}

func TestDecodeNaturalNonMinimalRejected(t *testing.T) {
	// [0x80, 0x00] decodes to 0, but the minimal encoding of 0 is a single
	// 0x00 byte; a 2-byte prefix form is non-canonical.
	_, _, err := DecodeNatural([]byte{0x80, 0x00})
	if !Is(err, OrderingViolation) {
		t.Fatalf("expected OrderingViolation, got %v", err)
	}
}

func TestDecodeNaturalTrailingBytesIgnored(t *testing.T) {
	b := append(EncodeNaturalBytes(42), 0xaa, 0xbb)
	v, n, err := DecodeNatural(b)
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 || n != 1 {
		t.Fatalf("got v=%d n=%d, want v=42 n=1", v, n)
	}
}
