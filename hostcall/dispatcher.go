package hostcall

import (
	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"github.com/Esscrypt/peanutbutterandjam-sub010/log"
	"github.com/Esscrypt/peanutbutterandjam-sub010/pvm"
)

// execState is the narrow surface a host-call handler needs from a PVM
// execution state: register access, remaining gas, and guest memory I/O.
// Handlers are written against this interface rather than *pvm.ExecState
// directly so they can be tested with a fake.
type execState interface {
	Register(i int) uint64
	SetRegister(i int, v uint64)
	GasRemaining() int64
	ReadMemory(addr uint32, n int) ([]byte, error)
	WriteMemory(addr uint32, data []byte) error
}

// execAdapter adapts a *pvm.ExecState to execState.
type execAdapter struct{ s *pvm.ExecState }

func (a execAdapter) Register(i int) uint64       { return a.s.Registers[i] }
func (a execAdapter) SetRegister(i int, v uint64)  { a.s.Registers[i] = v }
func (a execAdapter) GasRemaining() int64          { return a.s.Gas }
func (a execAdapter) ReadMemory(addr uint32, n int) ([]byte, error) {
	return a.s.Memory.Read(addr, n)
}
func (a execAdapter) WriteMemory(addr uint32, data []byte) error {
	return a.s.Memory.Write(addr, data)
}

// handlerFunc is one host call's implementation.
type handlerFunc func(d *Dispatcher, s execState) Error

// Mode selects which threaded context a Dispatcher operates against.
type Mode byte

const (
	ModeAccumulate Mode = iota
	ModeRefine
)

// Dispatcher is the ECALLI function table: one handlerFunc per FunctionID,
// closed over the threaded context appropriate to the invocation mode
// (spec.md §9: "Host-call dispatcher as a function table ... built once at
// startup"). A Dispatcher is built per invocation since it closes over that
// invocation's own mutable context.
type Dispatcher struct {
	Mode       Mode
	Accumulate *AccumulateContext
	Refine     *RefineContext
	Logger     *log.Logger

	table [fnCount]handlerFunc
}

// NewAccumulateDispatcher builds a dispatcher wired to ctx for an
// accumulate invocation.
func NewAccumulateDispatcher(ctx *AccumulateContext, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{Mode: ModeAccumulate, Accumulate: ctx, Logger: logger}
	d.table = [fnCount]handlerFunc{
		FnGas:        accGas,
		FnRead:       accRead,
		FnWrite:      accWrite,
		FnInfo:       accInfo,
		FnLog:        accLog,
		FnBless:      accBless,
		FnAssign:     accAssign,
		FnDesignate:  accDesignate,
		FnCheckpoint: accCheckpoint,
		FnNew:        accNew,
		FnUpgrade:    accUpgrade,
		FnTransfer:   accTransfer,
		FnEject:      accEject,
		FnQuery:      accQuery,
		FnSolicit:    accSolicit,
		FnForget:     accForget,
		FnYield:      accYield,
		FnProvide:    accProvide,
		FnLookup:     accLookup,
	}
	return d
}

// NewRefineDispatcher builds a dispatcher wired to ctx for a refine
// invocation.
func NewRefineDispatcher(ctx *RefineContext, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{Mode: ModeRefine, Refine: ctx, Logger: logger}
	d.table = [fnCount]handlerFunc{
		FnGas:              refGas,
		FnLog:              refLog,
		FnFetch:            refFetch,
		FnHistoricalLookup: refHistoricalLookup,
		FnPeek:             refPeek,
		FnPoke:             refPoke,
		FnPages:            refPages,
		FnMachine:          refMachine,
		FnInvoke:           refInvoke,
		FnExpunge:          refExpunge,
	}
	return d
}

// Dispatch implements pvm.HostDispatcher. It looks up functionID's handler,
// runs it against s's registers and memory, and writes the resulting Error
// into the output register. An unrecognized function id is reported as
// WHAT rather than panicking the VM.
func (d *Dispatcher) Dispatch(s *pvm.ExecState, functionID uint64) {
	a := execAdapter{s: s}
	if functionID >= uint64(fnCount) || d.table[functionID] == nil {
		a.SetRegister(regErrorCode, uint64(ErrWhat))
		return
	}
	result := d.table[functionID](d, a)
	a.SetRegister(regErrorCode, uint64(result))
}

func blake2bHash(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

func compressPreimage(blob []byte) []byte {
	return snappy.Encode(nil, blob)
}

func decompressPreimage(blob []byte) ([]byte, error) {
	return snappy.Decode(nil, blob)
}
