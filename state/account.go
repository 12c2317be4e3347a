package state

import "github.com/Esscrypt/peanutbutterandjam-sub010/codec"

// ServiceAccount is a long-lived on-chain actor's full state: code, balance,
// and a flat raw keyval store from which the storage/preimages/requests
// views are always recomputed, never persisted. See spec.md §3 and §4.2.
type ServiceAccount struct {
	CodeHash   [32]byte
	Balance    uint64
	MinAccGas  uint64
	MinMemoGas uint64
	Gratis     uint64
	Created    uint64
	LastAcc    uint64
	Parent     uint64
	RawKV      RawKVStore
}

// Octets is the recomputed byte-count of every value in RawKV.
func (a ServiceAccount) Octets() uint64 { return a.RawKV.Octets() }

// Items is the recomputed entry count of RawKV.
func (a ServiceAccount) Items() uint64 { return a.RawKV.Items() }

// Encode appends the canonical encoding of a to dst.
func (a ServiceAccount) Encode(dst []byte) []byte {
	dst = codec.EncodeFixedBytes(dst, a.CodeHash[:])
	dst = codec.EncodeNatural(dst, a.Balance)
	dst = codec.EncodeNatural(dst, a.MinAccGas)
	dst = codec.EncodeNatural(dst, a.MinMemoGas)
	dst = codec.EncodeNatural(dst, a.Gratis)
	dst = codec.EncodeNatural(dst, a.Created)
	dst = codec.EncodeNatural(dst, a.LastAcc)
	dst = codec.EncodeNatural(dst, a.Parent)
	return EncodeRawKVStore(dst, a.RawKV)
}

// DecodeServiceAccount decodes one ServiceAccount from the front of b.
func DecodeServiceAccount(b []byte) (ServiceAccount, int, error) {
	var a ServiceAccount
	off := 0

	hash, n, err := codec.DecodeFixedBytes(b[off:], 32)
	if err != nil {
		return a, 0, err
	}
	copy(a.CodeHash[:], hash)
	off += n

	for _, dst := range []*uint64{&a.Balance, &a.MinAccGas, &a.MinMemoGas, &a.Gratis, &a.Created, &a.LastAcc, &a.Parent} {
		v, n, err := codec.DecodeNatural(b[off:])
		if err != nil {
			return a, 0, err
		}
		*dst = v
		off += n
	}

	kv, n, err := DecodeRawKVStore(b[off:])
	if err != nil {
		return a, 0, err
	}
	a.RawKV = kv
	off += n

	return a, off, nil
}
