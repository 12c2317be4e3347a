// Package program decodes a PVM program blob into code bytes, a
// branch-target bitmask, a jump table and the fixed initial register file.
// See spec.md §4.3 and §6 for the exact byte layout.
package program

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/codec"
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
)

// NumRegisters is the fixed register-file width every PVM execution state
// carries (spec.md §3).
const NumRegisters = 13

// DecodedProgram owns the decoded code region, its branch-target bitmask,
// the jump table, and the initial register file a fresh invocation starts
// with.
type DecodedProgram struct {
	JumpTable        []uint64
	Code             []byte
	Bitmask          []byte // ceil(len(Code)/8) bytes, bit i of byte i/8 is Code offset i
	InitialRegisters [NumRegisters]uint64
}

// IsBranchTarget reports whether offset is a legal branch destination.
func (p *DecodedProgram) IsBranchTarget(offset int) bool {
	if offset < 0 || offset >= len(p.Code) {
		return false
	}
	byteIdx := offset / 8
	bitIdx := uint(offset % 8)
	if byteIdx >= len(p.Bitmask) {
		return false
	}
	return p.Bitmask[byteIdx]&(1<<bitIdx) != 0
}

// Encode appends the canonical encoding of a program blob (without the
// preimage-layout length prefix) to dst.
func Encode(dst []byte, jumpTable []uint64, code []byte, bitmask []byte) []byte {
	dst = codec.EncodeSequence(dst, jumpTable, func(d []byte, v uint64) []byte { return codec.EncodeNatural(d, v) })
	dst = codec.EncodeNatural(dst, uint64(len(code)))
	dst = append(dst, code...)
	return append(dst, bitmask...)
}

// Decode reads a program blob from the front of b and builds a
// DecodedProgram with its initial registers set per consts.
func Decode(b []byte, consts config.Constants) (*DecodedProgram, int, error) {
	off := 0

	jumpTable, n, err := codec.DecodeSequence(b[off:], codec.DecodeNatural)
	if err != nil {
		return nil, 0, err
	}
	off += n

	codeLen, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	if uint64(len(b[off:])) < codeLen {
		return nil, 0, codec.NewError(codec.Truncated, "program: need %d code bytes, have %d", codeLen, len(b[off:]))
	}
	code := make([]byte, codeLen)
	copy(code, b[off:off+int(codeLen)])
	off += int(codeLen)

	bitmaskLen := bitmaskLength(int(codeLen))
	bitmask, n, err := codec.DecodeFixedBytes(b[off:], bitmaskLen)
	if err != nil {
		return nil, 0, err
	}
	off += n

	p := &DecodedProgram{
		JumpTable: jumpTable,
		Code:      code,
		Bitmask:   bitmask,
	}
	p.InitialRegisters[1] = uint64(consts.StackSegmentEnd)
	p.InitialRegisters[2] = uint64(consts.ArgsSegmentStart)

	return p, off, nil
}

// bitmaskLength returns ceil(codeLen/8).
func bitmaskLength(codeLen int) int {
	return (codeLen + 7) / 8
}

// EncodePreimage appends the preimage layout (leading total-length prefix)
// for a program blob to dst.
func EncodePreimage(dst []byte, jumpTable []uint64, code []byte, bitmask []byte) []byte {
	body := Encode(nil, jumpTable, code, bitmask)
	dst = codec.EncodeNatural(dst, uint64(len(body)))
	return append(dst, body...)
}

// DecodePreimage reads a preimage-layout program blob (leading
// natural(total_length) followed by the program blob) from the front of b.
func DecodePreimage(b []byte, consts config.Constants) (*DecodedProgram, int, error) {
	totalLen, n, err := codec.DecodeNatural(b)
	if err != nil {
		return nil, 0, err
	}
	off := n
	if uint64(len(b[off:])) < totalLen {
		return nil, 0, codec.NewError(codec.Truncated, "program preimage: need %d body bytes, have %d", totalLen, len(b[off:]))
	}
	p, bodyLen, err := Decode(b[off:off+int(totalLen)], consts)
	if err != nil {
		return nil, 0, err
	}
	if uint64(bodyLen) != totalLen {
		return nil, 0, codec.NewError(codec.InvalidLength, "program preimage: declared length %d, actual body length %d", totalLen, bodyLen)
	}
	return p, off + bodyLen, nil
}
