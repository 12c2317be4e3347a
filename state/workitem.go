package state

import "github.com/Esscrypt/peanutbutterandjam-sub010/codec"

// Import references one data segment a work item reads as input, produced
// as an export of some earlier work item.
type Import struct {
	SegmentRoot [32]byte
	Index       uint64
}

func (i Import) encode(dst []byte) []byte {
	dst = codec.EncodeFixedBytes(dst, i.SegmentRoot[:])
	return codec.EncodeNatural(dst, i.Index)
}

func decodeImport(b []byte) (Import, int, error) {
	var im Import
	root, n, err := codec.DecodeFixedBytes(b, 32)
	if err != nil {
		return im, 0, err
	}
	copy(im.SegmentRoot[:], root)
	idx, m, err := codec.DecodeNatural(b[n:])
	if err != nil {
		return im, 0, err
	}
	im.Index = idx
	return im, n + m, nil
}

// Extrinsic references one extrinsic blob a work item consumes, by hash and
// declared length.
type Extrinsic struct {
	Hash   [32]byte
	Length uint64
}

func (e Extrinsic) encode(dst []byte) []byte {
	dst = codec.EncodeFixedBytes(dst, e.Hash[:])
	return codec.EncodeNatural(dst, e.Length)
}

func decodeExtrinsic(b []byte) (Extrinsic, int, error) {
	var e Extrinsic
	hash, n, err := codec.DecodeFixedBytes(b, 32)
	if err != nil {
		return e, 0, err
	}
	copy(e.Hash[:], hash)
	length, m, err := codec.DecodeNatural(b[n:])
	if err != nil {
		return e, 0, err
	}
	e.Length = length
	return e, n + m, nil
}

// WorkItem is a single unit of service work; multiple compose a
// WorkPackage. See spec.md §3.
type WorkItem struct {
	ServiceID          uint64
	CodeHash           [32]byte
	Payload            []byte
	RefineGasLimit     uint64
	AccumulateGasLimit uint64
	ExportCount        uint64
	Imports            []Import
	Extrinsics         []Extrinsic
}

// Encode appends the canonical encoding of wi to dst.
func (wi WorkItem) Encode(dst []byte) []byte {
	dst = codec.EncodeNatural(dst, wi.ServiceID)
	dst = codec.EncodeFixedBytes(dst, wi.CodeHash[:])
	dst = codec.EncodeBlob(dst, wi.Payload)
	dst = codec.EncodeNatural(dst, wi.RefineGasLimit)
	dst = codec.EncodeNatural(dst, wi.AccumulateGasLimit)
	dst = codec.EncodeNatural(dst, wi.ExportCount)
	dst = codec.EncodeSequence(dst, wi.Imports, func(d []byte, i Import) []byte { return i.encode(d) })
	dst = codec.EncodeSequence(dst, wi.Extrinsics, func(d []byte, e Extrinsic) []byte { return e.encode(d) })
	return dst
}

// DecodeWorkItem decodes one WorkItem from the front of b.
func DecodeWorkItem(b []byte) (WorkItem, int, error) {
	var wi WorkItem
	off := 0

	id, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return wi, 0, err
	}
	wi.ServiceID = id
	off += n

	hash, n, err := codec.DecodeFixedBytes(b[off:], 32)
	if err != nil {
		return wi, 0, err
	}
	copy(wi.CodeHash[:], hash)
	off += n

	payload, n, err := codec.DecodeBlob(b[off:])
	if err != nil {
		return wi, 0, err
	}
	wi.Payload = payload
	off += n

	for _, dst := range []*uint64{&wi.RefineGasLimit, &wi.AccumulateGasLimit, &wi.ExportCount} {
		v, n, err := codec.DecodeNatural(b[off:])
		if err != nil {
			return wi, 0, err
		}
		*dst = v
		off += n
	}

	imports, n, err := codec.DecodeSequence(b[off:], decodeImport)
	if err != nil {
		return wi, 0, err
	}
	wi.Imports = imports
	off += n

	extrinsics, n, err := codec.DecodeSequence(b[off:], decodeExtrinsic)
	if err != nil {
		return wi, 0, err
	}
	wi.Extrinsics = extrinsics
	off += n

	return wi, off, nil
}

// RefineContext carries the block-anchoring data a work package's refine
// invocation runs against. See spec.md §3.
type RefineContext struct {
	AnchorHash           [32]byte
	StateRoot            [32]byte
	BeefyRoot            [32]byte
	LookupAnchorHash     [32]byte
	LookupAnchorTimeslot uint64
	Prerequisite         *[32]byte
}

func (c RefineContext) encode(dst []byte) []byte {
	dst = codec.EncodeFixedBytes(dst, c.AnchorHash[:])
	dst = codec.EncodeFixedBytes(dst, c.StateRoot[:])
	dst = codec.EncodeFixedBytes(dst, c.BeefyRoot[:])
	dst = codec.EncodeFixedBytes(dst, c.LookupAnchorHash[:])
	dst = codec.EncodeNatural(dst, c.LookupAnchorTimeslot)
	if c.Prerequisite == nil {
		return codec.EncodeOptionalNone(dst)
	}
	return codec.EncodeOptionalSome(dst, c.Prerequisite[:])
}

func decodeRefineContext(b []byte) (RefineContext, int, error) {
	var c RefineContext
	off := 0
	for _, dst := range []*[32]byte{&c.AnchorHash, &c.StateRoot, &c.BeefyRoot, &c.LookupAnchorHash} {
		v, n, err := codec.DecodeFixedBytes(b[off:], 32)
		if err != nil {
			return c, 0, err
		}
		copy(dst[:], v)
		off += n
	}
	ts, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return c, 0, err
	}
	c.LookupAnchorTimeslot = ts
	off += n

	present, n, err := codec.DecodeOptionalDiscriminant(b[off:])
	if err != nil {
		return c, 0, err
	}
	off += n
	if present {
		prereq, n, err := codec.DecodeFixedBytes(b[off:], 32)
		if err != nil {
			return c, 0, err
		}
		var p [32]byte
		copy(p[:], prereq)
		c.Prerequisite = &p
		off += n
	}
	return c, off, nil
}

// WorkPackage aggregates work items with an authorization blob and a refine
// context. See spec.md §3.
type WorkPackage struct {
	Items         []WorkItem
	Authorization []byte
	Context       RefineContext
}

// Encode appends the canonical encoding of wp to dst.
func (wp WorkPackage) Encode(dst []byte) []byte {
	dst = codec.EncodeSequence(dst, wp.Items, func(d []byte, wi WorkItem) []byte { return wi.Encode(d) })
	dst = codec.EncodeBlob(dst, wp.Authorization)
	return wp.Context.encode(dst)
}

// DecodeWorkPackage decodes one WorkPackage from the front of b.
func DecodeWorkPackage(b []byte) (WorkPackage, int, error) {
	var wp WorkPackage
	off := 0

	items, n, err := codec.DecodeSequence(b[off:], DecodeWorkItem)
	if err != nil {
		return wp, 0, err
	}
	wp.Items = items
	off += n

	auth, n, err := codec.DecodeBlob(b[off:])
	if err != nil {
		return wp, 0, err
	}
	wp.Authorization = auth
	off += n

	ctx, n, err := decodeRefineContext(b[off:])
	if err != nil {
		return wp, 0, err
	}
	wp.Context = ctx
	off += n

	return wp, off, nil
}
