package state

import (
	"sort"

	"github.com/Esscrypt/peanutbutterandjam-sub010/codec"
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
)

// AccountEntry is one (service id, account) pair of PartialState.Accounts.
type AccountEntry struct {
	ID      uint64
	Account ServiceAccount
}

// AlwaysAccumulateEntry is one (service id, gas) pair of the
// always-accumulate mapping.
type AlwaysAccumulateEntry struct {
	ID  uint64
	Gas uint64
}

// PartialState is the portion of chain state one accumulation invocation
// sees and may mutate. See spec.md §3 and §4.2.
type PartialState struct {
	Accounts  []AccountEntry
	Staging   [][336]byte
	AuthQueue [][][32]byte // [core][authQueueSize]hash
	Manager   uint64
	Assigners []uint64 // one per core
	Delegator uint64
	Registrar uint64

	AlwaysAccumulate []AlwaysAccumulateEntry
}

// Encode appends the canonical encoding of s to dst. consts determines the
// fixed-size regions (staging set size, per-core auth queue size, one
// assigner per core): missing entries are written as zeros and entries
// beyond those sizes are not written.
func (s PartialState) Encode(dst []byte, consts config.Constants) []byte {
	dst = codec.EncodeSequence(dst, s.Accounts, func(d []byte, e AccountEntry) []byte {
		d = codec.EncodeNatural(d, e.ID)
		return e.Account.Encode(d)
	})

	for i := 0; i < int(consts.NumValidators); i++ {
		var v [336]byte
		if i < len(s.Staging) {
			v = s.Staging[i]
		}
		dst = codec.EncodeFixedBytes(dst, v[:])
	}

	for c := 0; c < int(consts.NumCores); c++ {
		for i := 0; i < int(consts.AuthQueueSize); i++ {
			var h [32]byte
			if c < len(s.AuthQueue) && i < len(s.AuthQueue[c]) {
				h = s.AuthQueue[c][i]
			}
			dst = codec.EncodeFixedBytes(dst, h[:])
		}
	}

	dst = codec.EncodeNatural(dst, s.Manager)
	for c := 0; c < int(consts.NumCores); c++ {
		var a uint64
		if c < len(s.Assigners) {
			a = s.Assigners[c]
		}
		dst = codec.EncodeNatural(dst, a)
	}
	dst = codec.EncodeNatural(dst, s.Delegator)
	dst = codec.EncodeNatural(dst, s.Registrar)

	dst = codec.EncodeSequence(dst, s.AlwaysAccumulate, func(d []byte, e AlwaysAccumulateEntry) []byte {
		d = codec.EncodeNatural(d, e.ID)
		return codec.EncodeNatural(d, e.Gas)
	})
	return dst
}

// DecodePartialState decodes a PartialState from the front of b, enforcing
// the fixed sizes named by consts and ascending key order for the two
// service-id-keyed sequences.
func DecodePartialState(b []byte, consts config.Constants) (PartialState, int, error) {
	var s PartialState
	off := 0

	accounts, n, err := codec.DecodeSequence(b[off:], func(b []byte) (AccountEntry, int, error) {
		id, n, err := codec.DecodeNatural(b)
		if err != nil {
			return AccountEntry{}, 0, err
		}
		acc, m, err := DecodeServiceAccount(b[n:])
		if err != nil {
			return AccountEntry{}, 0, err
		}
		return AccountEntry{ID: id, Account: acc}, n + m, nil
	})
	if err != nil {
		return s, 0, err
	}
	if err := checkAscendingAccountIDs(accounts); err != nil {
		return s, 0, err
	}
	s.Accounts = accounts
	off += n

	s.Staging = make([][336]byte, consts.NumValidators)
	for i := range s.Staging {
		v, n, err := codec.DecodeFixedBytes(b[off:], 336)
		if err != nil {
			return s, 0, err
		}
		copy(s.Staging[i][:], v)
		off += n
	}

	s.AuthQueue = make([][][32]byte, consts.NumCores)
	for c := range s.AuthQueue {
		s.AuthQueue[c] = make([][32]byte, consts.AuthQueueSize)
		for i := range s.AuthQueue[c] {
			h, n, err := codec.DecodeFixedBytes(b[off:], 32)
			if err != nil {
				return s, 0, err
			}
			copy(s.AuthQueue[c][i][:], h)
			off += n
		}
	}

	manager, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return s, 0, err
	}
	s.Manager = manager
	off += n

	s.Assigners = make([]uint64, consts.NumCores)
	for i := range s.Assigners {
		v, n, err := codec.DecodeNatural(b[off:])
		if err != nil {
			return s, 0, err
		}
		s.Assigners[i] = v
		off += n
	}

	delegator, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return s, 0, err
	}
	s.Delegator = delegator
	off += n

	registrar, n, err := codec.DecodeNatural(b[off:])
	if err != nil {
		return s, 0, err
	}
	s.Registrar = registrar
	off += n

	aa, n, err := codec.DecodeSequence(b[off:], func(b []byte) (AlwaysAccumulateEntry, int, error) {
		id, n, err := codec.DecodeNatural(b)
		if err != nil {
			return AlwaysAccumulateEntry{}, 0, err
		}
		gas, m, err := codec.DecodeNatural(b[n:])
		if err != nil {
			return AlwaysAccumulateEntry{}, 0, err
		}
		return AlwaysAccumulateEntry{ID: id, Gas: gas}, n + m, nil
	})
	if err != nil {
		return s, 0, err
	}
	if err := checkAscendingAlwaysAccumulate(aa); err != nil {
		return s, 0, err
	}
	s.AlwaysAccumulate = aa
	off += n

	return s, off, nil
}

func checkAscendingAccountIDs(entries []AccountEntry) error {
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return codec.CheckAscendingUint64(ids)
}

func checkAscendingAlwaysAccumulate(entries []AlwaysAccumulateEntry) error {
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return codec.CheckAscendingUint64(ids)
}

// SortAccounts sorts s.Accounts by ascending service id, as required before
// encoding.
func (s *PartialState) SortAccounts() {
	sort.Slice(s.Accounts, func(i, j int) bool { return s.Accounts[i].ID < s.Accounts[j].ID })
}

// SortAlwaysAccumulate sorts s.AlwaysAccumulate by ascending service id.
func (s *PartialState) SortAlwaysAccumulate() {
	sort.Slice(s.AlwaysAccumulate, func(i, j int) bool { return s.AlwaysAccumulate[i].ID < s.AlwaysAccumulate[j].ID })
}
