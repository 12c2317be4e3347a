package hostcall

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/state"
)

// AccumulateContext is the threaded state an accumulate invocation's host
// calls mutate in place: the active service id, its Implications (which
// embed the PartialState the guest can read and write), and a checkpoint
// stack for the CHECKPOINT/rollback host call (spec.md §4.6, §7).
type AccumulateContext struct {
	Consts      config.Constants
	ServiceID   uint64
	Current     state.Implications
	checkpoints []state.Implications
}

// NewAccumulateContext builds a fresh threaded context for one accumulate
// invocation of serviceID, starting from im.
func NewAccumulateContext(consts config.Constants, serviceID uint64, im state.Implications) *AccumulateContext {
	return &AccumulateContext{Consts: consts, ServiceID: serviceID, Current: im}
}

// checkpoint deep-copies Current via its own wire encoding, so later
// mutation of slices inside Current can never alias a pushed snapshot.
func (c *AccumulateContext) checkpoint() {
	enc := c.Current.Encode(nil, c.Consts)
	clone, _, err := state.DecodeImplications(enc, c.Consts)
	if err != nil {
		// Current was built by this same process via Encode above, so a
		// decode failure here means the encoder and decoder disagree --
		// a programming error, not a guest-triggerable condition.
		panic("hostcall: checkpoint round-trip failed: " + err.Error())
	}
	c.checkpoints = append(c.checkpoints, clone)
}

// Rollback restores Current from the most recent checkpoint, discarding
// everything mutated since. Reports false if there is nothing to roll back
// to (a panic/fault with no prior CHECKPOINT call) -- the invocation driver
// falls back to the context as it stood at invocation start in that case.
func (c *AccumulateContext) Rollback() bool {
	return c.rollback()
}

func (c *AccumulateContext) rollback() bool {
	if len(c.checkpoints) == 0 {
		return false
	}
	last := len(c.checkpoints) - 1
	c.Current = c.checkpoints[last]
	c.checkpoints = c.checkpoints[:last]
	return true
}

func (c *AccumulateContext) findAccount(id uint64) (int, bool) {
	for i, e := range c.Current.State.Accounts {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

func accGas(d *Dispatcher, s execState) Error {
	s.SetRegister(regResult, uint64(s.GasRemaining()))
	return ErrNone
}

func accRead(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	keyAddr := uint32(s.Register(regArg0))
	keyLen := uint32(s.Register(regArg1))
	destAddr := uint32(s.Register(regArg2))

	key, err := s.ReadMemory(keyAddr, int(keyLen))
	if err != nil {
		return ErrOOB
	}

	raw := d.Accumulate.Current.State.Accounts[idx].Account.RawKV
	value, found := raw.Storage()[state.StorageKey(key)]
	if !found {
		return ErrHuh
	}
	if err := s.WriteMemory(destAddr, value); err != nil {
		return ErrOOB
	}
	s.SetRegister(regResult, uint64(len(value)))
	return ErrNone
}

func accWrite(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	keyAddr := uint32(s.Register(regArg0))
	keyLen := uint32(s.Register(regArg1))
	valAddr := uint32(s.Register(regArg2))
	valLen := uint32(s.Register(regArg3))

	key, err := s.ReadMemory(keyAddr, int(keyLen))
	if err != nil {
		return ErrOOB
	}
	value, err := s.ReadMemory(valAddr, int(valLen))
	if err != nil {
		return ErrOOB
	}

	acc := &d.Accumulate.Current.State.Accounts[idx].Account
	acc.RawKV = acc.RawKV.PutStorage(key, value)
	return ErrNone
}

func accInfo(d *Dispatcher, s execState) Error {
	id := s.Register(regArg0)
	idx, ok := d.Accumulate.findAccount(id)
	if !ok {
		return ErrWho
	}
	destAddr := uint32(s.Register(regArg1))
	enc := d.Accumulate.Current.State.Accounts[idx].Account.Encode(nil)
	if err := s.WriteMemory(destAddr, enc); err != nil {
		return ErrOOB
	}
	s.SetRegister(regResult, uint64(len(enc)))
	return ErrNone
}

func accLog(d *Dispatcher, s execState) Error {
	addr := uint32(s.Register(regArg0))
	length := uint32(s.Register(regArg1))
	msg, err := s.ReadMemory(addr, int(length))
	if err != nil {
		return ErrOOB
	}
	if d.Logger != nil {
		d.Logger.Info(string(msg), "service", d.Accumulate.ServiceID)
	}
	return ErrNone
}

func accBless(d *Dispatcher, s execState) Error {
	d.Accumulate.Current.State.Manager = s.Register(regArg0)
	return ErrNone
}

func accAssign(d *Dispatcher, s execState) Error {
	core := s.Register(regArg0)
	if int(core) >= len(d.Accumulate.Current.State.Assigners) {
		return ErrCore
	}
	d.Accumulate.Current.State.Assigners[core] = s.Register(regArg1)
	return ErrNone
}

func accDesignate(d *Dispatcher, s execState) Error {
	addr := uint32(s.Register(regArg0))
	st := &d.Accumulate.Current.State
	for i := range st.Staging {
		v, err := s.ReadMemory(addr+uint32(i*336), 336)
		if err != nil {
			return ErrOOB
		}
		copy(st.Staging[i][:], v)
	}
	return ErrNone
}

func accCheckpoint(d *Dispatcher, s execState) Error {
	d.Accumulate.checkpoint()
	return ErrNone
}

func accNew(d *Dispatcher, s execState) Error {
	id := d.Accumulate.Current.NextFreeID
	var codeHash [32]byte
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	copy(codeHash[:], h)

	acc := state.ServiceAccount{
		CodeHash:   codeHash,
		MinAccGas:  s.Register(regArg1),
		MinMemoGas: s.Register(regArg2),
		Parent:     d.Accumulate.ServiceID,
	}
	d.Accumulate.Current.State.Accounts = append(d.Accumulate.Current.State.Accounts, state.AccountEntry{ID: id, Account: acc})
	d.Accumulate.Current.State.SortAccounts()
	d.Accumulate.Current.NextFreeID = id + 1
	s.SetRegister(regResult, id)
	return ErrNone
}

func accUpgrade(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	acc := &d.Accumulate.Current.State.Accounts[idx].Account
	copy(acc.CodeHash[:], h)
	acc.MinAccGas = s.Register(regArg1)
	acc.MinMemoGas = s.Register(regArg2)
	return ErrNone
}

func accTransfer(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	amount := s.Register(regArg1)
	src := &d.Accumulate.Current.State.Accounts[idx].Account
	if src.Balance < amount {
		return ErrCash
	}

	memoAddr := uint32(s.Register(regArg2))
	memoBytes, err := s.ReadMemory(memoAddr, 128)
	if err != nil {
		return ErrOOB
	}
	var memo [128]byte
	copy(memo[:], memoBytes)

	src.Balance -= amount
	d.Accumulate.Current.Transfers = append(d.Accumulate.Current.Transfers, state.DeferredTransfer{
		Source:      d.Accumulate.ServiceID,
		Destination: s.Register(regArg0),
		Amount:      amount,
		Memo:        memo,
		GasLimit:    s.Register(regArg3),
	})
	return ErrNone
}

func accEject(d *Dispatcher, s execState) Error {
	id := s.Register(regArg0)
	idx, ok := d.Accumulate.findAccount(id)
	if !ok {
		return ErrWho
	}
	accounts := d.Accumulate.Current.State.Accounts
	d.Accumulate.Current.State.Accounts = append(accounts[:idx], accounts[idx+1:]...)
	return ErrNone
}

func accQuery(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	length := s.Register(regArg1)

	for _, r := range d.Accumulate.Current.State.Accounts[idx].Account.RawKV.Requests() {
		if r.Hash == hash && r.Length == length {
			s.SetRegister(regResult, uint64(len(r.Timeslots)))
			return ErrNone
		}
	}
	return ErrHuh
}

func accSolicit(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	length := s.Register(regArg1)

	acc := &d.Accumulate.Current.State.Accounts[idx].Account
	acc.RawKV = acc.RawKV.PutRequest(hash, length, nil)
	return ErrNone
}

func accForget(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	length := s.Register(regArg1)

	acc := &d.Accumulate.Current.State.Accounts[idx].Account
	requestKey := state.RequestKey(hash, length)
	filtered := acc.RawKV[:0]
	for _, e := range acc.RawKV {
		if e.Key == requestKey {
			continue
		}
		filtered = append(filtered, e)
	}
	acc.RawKV = filtered
	return ErrNone
}

func accYield(d *Dispatcher, s execState) Error {
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	d.Accumulate.Current.Yield = &hash
	return ErrNone
}

func accLookup(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	destAddr := uint32(s.Register(regArg1))

	for _, p := range d.Accumulate.Current.State.Accounts[idx].Account.RawKV.Preimages() {
		if p.Hash != hash {
			continue
		}
		blob, err := decompressPreimage(p.Blob)
		if err != nil {
			return ErrHuh
		}
		if err := s.WriteMemory(destAddr, blob); err != nil {
			return ErrOOB
		}
		s.SetRegister(regResult, uint64(len(blob)))
		return ErrNone
	}
	return ErrHuh
}

func accProvide(d *Dispatcher, s execState) Error {
	idx, ok := d.Accumulate.findAccount(d.Accumulate.ServiceID)
	if !ok {
		return ErrWho
	}
	addr := uint32(s.Register(regArg0))
	length := uint32(s.Register(regArg1))
	blob, err := s.ReadMemory(addr, int(length))
	if err != nil {
		return ErrOOB
	}
	hash := blake2bHash(blob)

	acc := &d.Accumulate.Current.State.Accounts[idx].Account
	acc.RawKV = acc.RawKV.PutPreimage(hash, compressPreimage(blob))

	d.Accumulate.Current.Provisions = append(d.Accumulate.Current.Provisions, state.Provision{
		ServiceID: d.Accumulate.ServiceID,
		Blob:      blob,
	})
	state.SortProvisions(d.Accumulate.Current.Provisions)
	return ErrNone
}
