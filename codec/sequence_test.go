package codec

import (
	"reflect"
	"testing"
)

func TestSequenceRoundTrip(t *testing.T) {
	items := []uint32{1, 2, 300, 70000}
	enc := EncodeSequence(nil, items, EncodeUint32)
	got, n, err := DecodeSequence(enc, DecodeUint32)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, items) || n != len(enc) {
		t.Fatalf("got %v, want %v", got, items)
	}
}

func TestSequenceEmpty(t *testing.T) {
	enc := EncodeSequence(nil, []uint32{}, EncodeUint32)
	got, _, err := DecodeSequence(enc, DecodeUint32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestSequenceElementErrorPropagates(t *testing.T) {
	enc := EncodeNaturalBytes(1) // count=1, but no element bytes follow
	_, _, err := DecodeSequence(enc, DecodeUint32)
	if !Is(err, Truncated) {
		t.Fatalf("expected Truncated, got %v", err)
	}
}

func TestCheckAscendingUint64(t *testing.T) {
	if err := CheckAscendingUint64([]uint64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := CheckAscendingUint64([]uint64{1, 1}); !Is(err, OrderingViolation) {
		t.Fatalf("expected OrderingViolation, got %v", err)
	}
	if err := CheckAscendingUint64([]uint64{2, 1}); !Is(err, OrderingViolation) {
		t.Fatalf("expected OrderingViolation, got %v", err)
	}
}

func TestCheckAscendingBytes(t *testing.T) {
	ok := [][]byte{{0x01}, {0x02}, {0x02, 0x00}}
	if err := CheckAscendingBytes(ok); err != nil {
		t.Fatal(err)
	}
	bad := [][]byte{{0x02}, {0x01}}
	if err := CheckAscendingBytes(bad); !Is(err, OrderingViolation) {
		t.Fatalf("expected OrderingViolation, got %v", err)
	}
}
