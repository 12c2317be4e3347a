package codec

import "testing"

func TestOptionalNone(t *testing.T) {
	enc := EncodeOptionalNone(nil)
	present, n, err := DecodeOptionalDiscriminant(enc)
	if err != nil {
		t.Fatal(err)
	}
	if present || n != 1 {
		t.Fatalf("got present=%v n=%d, want false 1", present, n)
	}
}

func TestOptionalSome(t *testing.T) {
	inner := EncodeUint32(nil, 7)
	enc := EncodeOptionalSome(nil, inner)
	present, n, err := DecodeOptionalDiscriminant(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !present || n != 1 {
		t.Fatalf("got present=%v n=%d, want true 1", present, n)
	}
	v, _, err := DecodeUint32(enc[n:])
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}

func TestOptionalInvalidDiscriminant(t *testing.T) {
	_, _, err := DecodeOptionalDiscriminant([]byte{0x02})
	if !Is(err, InvalidDiscriminant) {
		t.Fatalf("expected InvalidDiscriminant, got %v", err)
	}
}
