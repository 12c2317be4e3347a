package state

import (
	"bytes"
	"sort"

	"github.com/Esscrypt/peanutbutterandjam-sub010/codec"
	"golang.org/x/crypto/blake2b"
)

// RawKey is the opaque 31-byte key of one entry in a service account's flat
// keyval store (spec.md §3, §9 "raw-keyval store vs. projected views").
type RawKey [31]byte

// entryKind tags what a raw-keyval entry's value actually holds, so the
// three logical views (storage, preimages, lookup requests) can be
// recovered by a pure scan over the flat store without needing to invert
// the key derivation.
type entryKind byte

const (
	kindStorage entryKind = iota
	kindPreimage
	kindRequest
)

// RawEntry is one (key, value) pair of the flat store, in the exact shape
// that gets encoded on the wire.
type RawEntry struct {
	Key   RawKey
	Value []byte
}

// StorageKey derives the flat-store key under which a service-scoped
// storage value identified by the caller-supplied key is kept. READ and
// WRITE host calls both hash through this function, so two calls with the
// same caller key always address the same entry without ever needing to
// recover the caller key from the store itself.
func StorageKey(key []byte) RawKey {
	return truncatedHash(byte(kindStorage), key)
}

// PreimageKey derives the flat-store key for a preimage identified by its
// 32-byte hash.
func PreimageKey(hash [32]byte) RawKey {
	return truncatedHash(byte(kindPreimage), hash[:])
}

// RequestKey derives the flat-store key for a lookup-request identified by
// (hash, length).
func RequestKey(hash [32]byte, length uint64) RawKey {
	buf := make([]byte, 0, 32+9)
	buf = append(buf, hash[:]...)
	buf = codec.EncodeNatural(buf, length)
	return truncatedHash(byte(kindRequest), buf)
}

func truncatedHash(tag byte, data []byte) RawKey {
	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, tag)
	buf = append(buf, data...)
	sum := blake2b.Sum256(buf)
	var k RawKey
	copy(k[:], sum[:31])
	return k
}

func encodeStorageValue(blob []byte) []byte {
	dst := []byte{byte(kindStorage)}
	return codec.EncodeBlob(dst, blob)
}

func encodePreimageValue(hash [32]byte, blob []byte) []byte {
	dst := []byte{byte(kindPreimage)}
	dst = codec.EncodeFixedBytes(dst, hash[:])
	return codec.EncodeBlob(dst, blob)
}

func encodeRequestValue(hash [32]byte, length uint64, timeslots []uint64) []byte {
	dst := []byte{byte(kindRequest)}
	dst = codec.EncodeFixedBytes(dst, hash[:])
	dst = codec.EncodeNatural(dst, length)
	return codec.EncodeSequence(dst, timeslots, func(d []byte, v uint64) []byte { return codec.EncodeNatural(d, v) })
}

// Storage returns the service-scoped key/value view projected from the flat
// store: the caller-supplied key is not recoverable, so this returns the
// flat keys directly (opaque to callers beyond round-tripping a prior put).
func (kv RawKVStore) Storage() map[RawKey][]byte {
	out := make(map[RawKey][]byte)
	for _, e := range kv {
		if entryKind(e.Value[0]) != kindStorage {
			continue
		}
		blob, _, err := codec.DecodeBlob(e.Value[1:])
		if err != nil {
			continue
		}
		out[e.Key] = blob
	}
	return out
}

// PreimageEntry is one decoded preimage view entry.
type PreimageEntry struct {
	Hash [32]byte
	Blob []byte
}

// Preimages returns the hash -> blob view projected from the flat store.
func (kv RawKVStore) Preimages() []PreimageEntry {
	var out []PreimageEntry
	for _, e := range kv {
		if entryKind(e.Value[0]) != kindPreimage {
			continue
		}
		rest := e.Value[1:]
		hash, n, err := codec.DecodeFixedBytes(rest, 32)
		if err != nil {
			continue
		}
		blob, _, err := codec.DecodeBlob(rest[n:])
		if err != nil {
			continue
		}
		var h [32]byte
		copy(h[:], hash)
		out = append(out, PreimageEntry{Hash: h, Blob: blob})
	}
	return out
}

// RequestEntry is one decoded lookup-request view entry: the preimage
// request state machine from spec.md §4.6, keyed by (hash, length).
type RequestEntry struct {
	Hash      [32]byte
	Length    uint64
	Timeslots []uint64
}

// Requests returns the (hash,length) -> timeslot-history view projected
// from the flat store.
func (kv RawKVStore) Requests() []RequestEntry {
	var out []RequestEntry
	for _, e := range kv {
		if entryKind(e.Value[0]) != kindRequest {
			continue
		}
		rest := e.Value[1:]
		hash, n, err := codec.DecodeFixedBytes(rest, 32)
		if err != nil {
			continue
		}
		rest = rest[n:]
		length, n, err := codec.DecodeNatural(rest)
		if err != nil {
			continue
		}
		rest = rest[n:]
		timeslots, _, err := codec.DecodeSequence(rest, codec.DecodeNatural)
		if err != nil {
			continue
		}
		var h [32]byte
		copy(h[:], hash)
		out = append(out, RequestEntry{Hash: h, Length: length, Timeslots: timeslots})
	}
	return out
}

// RawKVStore is the flat raw keyval store underlying one service account,
// kept sorted in ascending key order -- the order required for canonical
// encoding.
type RawKVStore []RawEntry

// Octets recomputes the service account's "octets" field: the sum of every
// value's length in bytes. Never trust a persisted value for this; spec.md
// §3/§9 require it be recomputed on every decode.
func (kv RawKVStore) Octets() uint64 {
	var total uint64
	for _, e := range kv {
		total += uint64(len(e.Value))
	}
	return total
}

// Items recomputes the service account's "items" field: the entry count.
func (kv RawKVStore) Items() uint64 {
	return uint64(len(kv))
}

// PutStorage inserts or replaces a storage entry, keeping kv sorted.
func (kv RawKVStore) PutStorage(key []byte, value []byte) RawKVStore {
	return kv.put(StorageKey(key), encodeStorageValue(value))
}

// PutPreimage inserts or replaces a preimage entry, keeping kv sorted.
func (kv RawKVStore) PutPreimage(hash [32]byte, blob []byte) RawKVStore {
	return kv.put(PreimageKey(hash), encodePreimageValue(hash, blob))
}

// PutRequest inserts or replaces a lookup-request entry, keeping kv sorted.
func (kv RawKVStore) PutRequest(hash [32]byte, length uint64, timeslots []uint64) RawKVStore {
	return kv.put(RequestKey(hash, length), encodeRequestValue(hash, length, timeslots))
}

func (kv RawKVStore) put(key RawKey, value []byte) RawKVStore {
	for i, e := range kv {
		if e.Key == key {
			kv[i].Value = value
			return kv
		}
	}
	kv = append(kv, RawEntry{Key: key, Value: value})
	sort.Slice(kv, func(i, j int) bool { return bytes.Compare(kv[i].Key[:], kv[j].Key[:]) < 0 })
	return kv
}

// EncodeRawKVStore appends the canonical variable-sequence encoding of kv.
func EncodeRawKVStore(dst []byte, kv RawKVStore) []byte {
	return codec.EncodeSequence(dst, kv, func(d []byte, e RawEntry) []byte {
		d = codec.EncodeFixedBytes(d, e.Key[:])
		return codec.EncodeBlob(d, e.Value)
	})
}

// DecodeRawKVStore decodes a raw keyval sequence, rejecting non-ascending
// key order with OrderingViolation.
func DecodeRawKVStore(b []byte) (RawKVStore, int, error) {
	entries, n, err := codec.DecodeSequence(b, func(b []byte) (RawEntry, int, error) {
		keyBytes, kn, err := codec.DecodeFixedBytes(b, 31)
		if err != nil {
			return RawEntry{}, 0, err
		}
		value, vn, err := codec.DecodeBlob(b[kn:])
		if err != nil {
			return RawEntry{}, 0, err
		}
		if len(value) == 0 {
			return RawEntry{}, 0, codec.NewError(codec.InvalidLength, "raw-keyval: empty value")
		}
		var e RawEntry
		copy(e.Key[:], keyBytes)
		e.Value = value
		return e, kn + vn, nil
	})
	if err != nil {
		return nil, 0, err
	}
	keys := make([][]byte, len(entries))
	for i, e := range entries {
		k := e.Key
		keys[i] = k[:]
	}
	if err := codec.CheckAscendingBytes(keys); err != nil {
		return nil, 0, err
	}
	return RawKVStore(entries), n, nil
}
