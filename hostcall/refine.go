package hostcall

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/program"
	"github.com/Esscrypt/peanutbutterandjam-sub010/pvm"
	"github.com/Esscrypt/peanutbutterandjam-sub010/state"
)

// The Buffer* constants index the system input buffers FETCH can read from, in a
// fixed order (spec.md §4.6: "read a byte-range from a named system input
// buffer").
const (
	BufferWorkPackage = iota
	BufferExtrinsics
	BufferImportSegments
	BufferAuthorizerTrace

	bufferCount
)

// RefineContext is the threaded state a refine invocation's host calls
// read from and mutate: the read-only system input buffers, the
// historical-lookup anchor, and the set of inner PVM machines spawned by
// MACHINE/INVOKE/EXPUNGE (spec.md §4.6, §4.7).
type RefineContext struct {
	Consts               config.Constants
	Buffers              [bufferCount][]byte
	HistoricalAccount    state.ServiceAccount
	LookupAnchorTimeslot uint64
	Machines             []*innerMachine
}

type innerMachine struct {
	exec *pvm.ExecState
	mem  *pvm.Memory
}

// NewRefineContext builds a fresh threaded context for one refine
// invocation.
func NewRefineContext(consts config.Constants, buffers [bufferCount][]byte, account state.ServiceAccount, lookupAnchorTimeslot uint64) *RefineContext {
	return &RefineContext{Consts: consts, Buffers: buffers, HistoricalAccount: account, LookupAnchorTimeslot: lookupAnchorTimeslot}
}

func refGas(d *Dispatcher, s execState) Error {
	s.SetRegister(regResult, uint64(s.GasRemaining()))
	return ErrNone
}

func refLog(d *Dispatcher, s execState) Error {
	addr := uint32(s.Register(regArg0))
	length := uint32(s.Register(regArg1))
	msg, err := s.ReadMemory(addr, int(length))
	if err != nil {
		return ErrOOB
	}
	if d.Logger != nil {
		d.Logger.Info(string(msg), "mode", "refine")
	}
	return ErrNone
}

func refFetch(d *Dispatcher, s execState) Error {
	bufID := s.Register(regArg0)
	offset := s.Register(regArg1)
	length := s.Register(regArg2)
	destAddr := uint32(s.Register(regArg3))

	if bufID >= bufferCount {
		return ErrWhat
	}
	buf := d.Refine.Buffers[bufID]
	// Checked separately, not as offset+length > len(buf): both are
	// guest-controlled uint64s and their sum can wrap past a small buffer
	// length, which would let a crafted offset slip through and then panic
	// on the out-of-range slice below.
	if offset > uint64(len(buf)) || length > uint64(len(buf))-offset {
		return ErrOOB
	}
	if err := s.WriteMemory(destAddr, buf[offset:offset+length]); err != nil {
		return ErrOOB
	}
	s.SetRegister(regResult, length)
	return ErrNone
}

func refHistoricalLookup(d *Dispatcher, s execState) Error {
	h, err := s.ReadMemory(uint32(s.Register(regArg0)), 32)
	if err != nil {
		return ErrOOB
	}
	var hash [32]byte
	copy(hash[:], h)
	destAddr := uint32(s.Register(regArg1))

	for _, p := range d.Refine.HistoricalAccount.RawKV.Preimages() {
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

func refMachine(d *Dispatcher, s execState) Error {
	addr := uint32(s.Register(regArg0))
	length := uint32(s.Register(regArg1))
	gasLimit := int64(s.Register(regArg2))

	blob, err := s.ReadMemory(addr, int(length))
	if err != nil {
		return ErrOOB
	}
	p, _, decErr := program.DecodePreimage(blob, d.Refine.Consts)
	if decErr != nil {
		return ErrWhat
	}

	mem := pvm.NewMemory(d.Refine.Consts, nil)
	exec := pvm.NewExecState(p, mem, gasLimit, 0, nil)
	d.Refine.Machines = append(d.Refine.Machines, &innerMachine{exec: exec, mem: mem})
	s.SetRegister(regResult, uint64(len(d.Refine.Machines)-1))
	return ErrNone
}

func refInvoke(d *Dispatcher, s execState) Error {
	idx := s.Register(regArg0)
	if idx >= uint64(len(d.Refine.Machines)) || d.Refine.Machines[idx] == nil {
		return ErrWho
	}
	m := d.Refine.Machines[idx]
	pvm.RunUntilHalt(m.exec, 0)
	s.SetRegister(regResult, uint64(m.exec.Status))
	return ErrNone
}

func refExpunge(d *Dispatcher, s execState) Error {
	idx := s.Register(regArg0)
	if idx >= uint64(len(d.Refine.Machines)) || d.Refine.Machines[idx] == nil {
		return ErrWho
	}
	gasLeft := uint64(d.Refine.Machines[idx].exec.Gas)
	d.Refine.Machines[idx] = nil
	s.SetRegister(regResult, gasLeft)
	return ErrNone
}

func refPeek(d *Dispatcher, s execState) Error {
	idx := s.Register(regArg0)
	if idx >= uint64(len(d.Refine.Machines)) || d.Refine.Machines[idx] == nil {
		return ErrWho
	}
	srcAddr := uint32(s.Register(regArg1))
	length := uint32(s.Register(regArg2))
	destAddr := uint32(s.Register(regArg3))

	data, err := d.Refine.Machines[idx].mem.Read(srcAddr, int(length))
	if err != nil {
		return ErrOOB
	}
	if err := s.WriteMemory(destAddr, data); err != nil {
		return ErrOOB
	}
	return ErrNone
}

func refPoke(d *Dispatcher, s execState) Error {
	idx := s.Register(regArg0)
	if idx >= uint64(len(d.Refine.Machines)) || d.Refine.Machines[idx] == nil {
		return ErrWho
	}
	srcAddr := uint32(s.Register(regArg1))
	length := uint32(s.Register(regArg2))
	destAddr := uint32(s.Register(regArg3))

	data, err := s.ReadMemory(srcAddr, int(length))
	if err != nil {
		return ErrOOB
	}
	if err := d.Refine.Machines[idx].mem.Write(destAddr, data); err != nil {
		return ErrOOB
	}
	return ErrNone
}

func refPages(d *Dispatcher, s execState) Error {
	idx := s.Register(regArg0)
	if idx >= uint64(len(d.Refine.Machines)) || d.Refine.Machines[idx] == nil {
		return ErrWho
	}
	pageLo := uint32(s.Register(regArg1))
	pageCount := uint32(s.Register(regArg2))
	permArg := s.Register(regArg3)
	if permArg > 2 {
		return ErrWhat
	}

	lo := pageLo * d.Refine.Consts.PageSize
	hi := lo + pageCount*d.Refine.Consts.PageSize
	d.Refine.Machines[idx].mem.SetPermission(lo, hi, pvm.Perm(permArg))
	return ErrNone
}
