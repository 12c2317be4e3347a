package program

import (
	"bytes"
	"testing"

	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
)

func sampleProgram() ([]uint64, []byte, []byte) {
	jumpTable := []uint64{0, 4}
	code := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	bitmask := make([]byte, bitmaskLength(len(code)))
	bitmask[0] = 0x01        // offset 0 is a branch target
	bitmask[0] |= 1 << 4     // offset 4 is a branch target
	return jumpTable, code, bitmask
}

func TestDecodeRoundTrip(t *testing.T) {
	consts := config.Defaults()
	jumpTable, code, bitmask := sampleProgram()
	enc := Encode(nil, jumpTable, code, bitmask)
	p, n, err := Decode(enc, consts)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	if !bytes.Equal(p.Code, code) {
		t.Fatalf("code mismatch: got %x, want %x", p.Code, code)
	}
	if !bytes.Equal(p.Bitmask, bitmask) {
		t.Fatalf("bitmask mismatch: got %x, want %x", p.Bitmask, bitmask)
	}
	if len(p.JumpTable) != 2 {
		t.Fatalf("jump table length %d, want 2", len(p.JumpTable))
	}
}

func TestInitialRegisters(t *testing.T) {
	consts := config.Defaults()
	jumpTable, code, bitmask := sampleProgram()
	enc := Encode(nil, jumpTable, code, bitmask)
	p, _, err := Decode(enc, consts)
	if err != nil {
		t.Fatal(err)
	}
	if p.InitialRegisters[1] != uint64(consts.StackSegmentEnd) {
		t.Fatalf("r1 = %d, want %d", p.InitialRegisters[1], consts.StackSegmentEnd)
	}
	if p.InitialRegisters[2] != uint64(consts.ArgsSegmentStart) {
		t.Fatalf("r2 = %d, want %d", p.InitialRegisters[2], consts.ArgsSegmentStart)
	}
	for i, r := range p.InitialRegisters {
		if i == 1 || i == 2 {
			continue
		}
		if r != 0 {
			t.Fatalf("register %d = %d, want 0", i, r)
		}
	}
}

func TestIsBranchTarget(t *testing.T) {
	consts := config.Defaults()
	jumpTable, code, bitmask := sampleProgram()
	enc := Encode(nil, jumpTable, code, bitmask)
	p, _, err := Decode(enc, consts)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsBranchTarget(0) {
		t.Fatal("offset 0 should be a branch target")
	}
	if !p.IsBranchTarget(4) {
		t.Fatal("offset 4 should be a branch target")
	}
	if p.IsBranchTarget(1) {
		t.Fatal("offset 1 should not be a branch target")
	}
	if p.IsBranchTarget(len(code)) {
		t.Fatal("offset past end of code should not be a branch target")
	}
}

func TestBitmaskLengthMatchesCodeLength(t *testing.T) {
	consts := config.Defaults()
	jumpTable, code, bitmask := sampleProgram()
	// Truncate the bitmask by one byte: the wrong length must be rejected
	// as InvalidLength since the decoder reads exactly ceil(len(code)/8) bytes.
	enc := Encode(nil, jumpTable, code, bitmask)
	truncated := enc[:len(enc)-1]
	_, _, err := Decode(truncated, consts)
	if err == nil {
		t.Fatal("expected an error decoding a truncated bitmask")
	}
}

func TestPreimageRoundTrip(t *testing.T) {
	consts := config.Defaults()
	jumpTable, code, bitmask := sampleProgram()
	enc := EncodePreimage(nil, jumpTable, code, bitmask)
	p, n, err := DecodePreimage(enc, consts)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	if !bytes.Equal(p.Code, code) {
		t.Fatal("code mismatch after preimage round-trip")
	}
}
