package state

import (
	"bytes"
	"sort"

	"github.com/Esscrypt/peanutbutterandjam-sub010/codec"
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
)

// DeferredTransfer is one queued inter-service balance transfer. The memo is
// always exactly 128 bytes, zero-padded (spec.md §3 invariant).
type DeferredTransfer struct {
	Source      uint64
	Destination uint64
	Amount      uint64
	Memo        [128]byte
	GasLimit    uint64
}

func (t DeferredTransfer) encode(dst []byte) []byte {
	dst = codec.EncodeNatural(dst, t.Source)
	dst = codec.EncodeNatural(dst, t.Destination)
	dst = codec.EncodeNatural(dst, t.Amount)
	dst = codec.EncodeFixedBytes(dst, t.Memo[:])
	return codec.EncodeNatural(dst, t.GasLimit)
}

func decodeDeferredTransfer(b []byte) (DeferredTransfer, int, error) {
	var t DeferredTransfer
	off := 0
	for _, dst := range []*uint64{&t.Source, &t.Destination, &t.Amount} {
		v, n, err := codec.DecodeNatural(b[off:])
		if err != nil {
			return t, 0, err
		}
		*dst = v
		off += n
	}
	memo, n, err := codec.DecodeFixedBytes(b[off:], 128)
	if err != nil {
		return t, 0, err
	}
	copy(t.Memo[:], memo)
	off += n

	gas, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return t, 0, err
	}
	t.GasLimit = gas
	off += n

	return t, off, nil
}

// Provision is a (service id, blob) tuple. A service may emit two
// provisions with the same id but different blobs, so the container is a
// sorted set of tuples, never a map keyed by service id (spec.md §9).
type Provision struct {
	ServiceID uint64
	Blob      []byte
}

func compareProvisions(a, b Provision) int {
	if a.ServiceID != b.ServiceID {
		if a.ServiceID < b.ServiceID {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.Blob, b.Blob)
}

// SortProvisions sorts provisions into canonical (serviceid, blob)
// lexicographic order.
func SortProvisions(provisions []Provision) {
	sort.Slice(provisions, func(i, j int) bool { return compareProvisions(provisions[i], provisions[j]) < 0 })
}

func checkAscendingProvisions(provisions []Provision) error {
	for i := 1; i < len(provisions); i++ {
		if compareProvisions(provisions[i], provisions[i-1]) <= 0 {
			return codec.NewError(codec.OrderingViolation, "provisions: entry %d not strictly ascending", i)
		}
	}
	return nil
}

// Implications is the output of one accumulation invocation for one
// service. See spec.md §3 and §4.2.
type Implications struct {
	ID         uint64
	State      PartialState
	NextFreeID uint64
	Transfers  []DeferredTransfer
	Yield      *[32]byte // nil means no yield root was set
	Provisions []Provision
}

// Encode appends the canonical encoding of im to dst.
func (im Implications) Encode(dst []byte, consts config.Constants) []byte {
	dst = codec.EncodeNatural(dst, im.ID)
	dst = im.State.Encode(dst, consts)
	dst = codec.EncodeNatural(dst, im.NextFreeID)
	dst = codec.EncodeSequence(dst, im.Transfers, func(d []byte, t DeferredTransfer) []byte { return t.encode(d) })
	if im.Yield == nil {
		dst = codec.EncodeOptionalNone(dst)
	} else {
		dst = codec.EncodeOptionalSome(dst, im.Yield[:])
	}
	dst = codec.EncodeSequence(dst, im.Provisions, func(d []byte, p Provision) []byte {
		d = codec.EncodeNatural(d, p.ServiceID)
		return codec.EncodeBlob(d, p.Blob)
	})
	return dst
}

// DecodeImplications decodes one Implications from the front of b.
func DecodeImplications(b []byte, consts config.Constants) (Implications, int, error) {
	var im Implications
	off := 0

	id, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return im, 0, err
	}
	im.ID = id
	off += n

	state, n, err := DecodePartialState(b[off:], consts)
	if err != nil {
		return im, 0, err
	}
	im.State = state
	off += n

	nextFree, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return im, 0, err
	}
	im.NextFreeID = nextFree
	off += n

	transfers, n, err := codec.DecodeSequence(b[off:], decodeDeferredTransfer)
	if err != nil {
		return im, 0, err
	}
	im.Transfers = transfers
	off += n

	present, n, err := codec.DecodeOptionalDiscriminant(b[off:])
	if err != nil {
		return im, 0, err
	}
	off += n
	if present {
		yield, n, err := codec.DecodeFixedBytes(b[off:], 32)
		if err != nil {
			return im, 0, err
		}
		var y [32]byte
		copy(y[:], yield)
		im.Yield = &y
		off += n
	}

	provisions, n, err := codec.DecodeSequence(b[off:], func(b []byte) (Provision, int, error) {
		id, n, err := codec.DecodeNatural(b)
		if err != nil {
			return Provision{}, 0, err
		}
		blob, m, err := codec.DecodeBlob(b[n:])
		if err != nil {
			return Provision{}, 0, err
		}
		return Provision{ServiceID: id, Blob: blob}, n + m, nil
	})
	if err != nil {
		return im, 0, err
	}
	if err := checkAscendingProvisions(provisions); err != nil {
		return im, 0, err
	}
	im.Provisions = provisions
	off += n

	return im, off, nil
}

// ImplicationsPair is always exactly (regular, exceptional) -- two
// implications, never more or fewer (spec.md §3 invariant).
type ImplicationsPair struct {
	Regular     Implications
	Exceptional Implications
}

// Encode appends the canonical encoding of the pair to dst.
func (p ImplicationsPair) Encode(dst []byte, consts config.Constants) []byte {
	dst = p.Regular.Encode(dst, consts)
	return p.Exceptional.Encode(dst, consts)
}

// DecodeImplicationsPair decodes an ImplicationsPair from the front of b.
func DecodeImplicationsPair(b []byte, consts config.Constants) (ImplicationsPair, int, error) {
	var pair ImplicationsPair
	regular, n, err := DecodeImplications(b, consts)
	if err != nil {
		return pair, 0, err
	}
	exceptional, m, err := DecodeImplications(b[n:], consts)
	if err != nil {
		return pair, 0, err
	}
	pair.Regular = regular
	pair.Exceptional = exceptional
	return pair, n + m, nil
}
