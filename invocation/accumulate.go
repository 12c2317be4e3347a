package invocation

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/hostcall"
	"github.com/Esscrypt/peanutbutterandjam-sub010/log"
	"github.com/Esscrypt/peanutbutterandjam-sub010/pvm"
	"github.com/Esscrypt/peanutbutterandjam-sub010/state"
)

// accumulatePC is the fixed entry point every accumulate invocation starts
// its program counter at (spec.md §4.7).
const accumulatePC = 5

// Accumulate runs one accumulate invocation to completion: decode
// programBlob (via cache), seed memory from args, execute under gasLimit,
// and return the deterministic (gasConsumed, result, newContext) triple.
// gasConsumed never exceeds gasLimit and the returned context reflects only
// what survived the last CHECKPOINT (or the whole run, if it halted
// cleanly) per spec.md §7's rollback rule.
func Accumulate(
	gasLimit int64,
	programBlob []byte,
	args []byte,
	serviceID uint64,
	context state.Implications,
	consts config.Constants,
	cache *ProgramCache,
	logger *log.Logger,
	metrics *Metrics,
) (gasConsumed uint64, result []byte, newContext state.Implications, status pvm.Status) {
	p, err := cache.Decode(programBlob, consts)
	if err != nil {
		return 0, nil, context, pvm.StatusPanic
	}

	mem := pvm.NewMemory(consts, args)
	// Host calls mutate ctx.Current in place, so the run works on a deep
	// copy made through the wire encoding; context itself stays untouched
	// for the no-checkpoint fallback below.
	working := context
	if clone, _, err := state.DecodeImplications(context.Encode(nil, consts), consts); err == nil {
		working = clone
	}
	ctx := NewAccumulateContext(consts, serviceID, working)
	dispatcher := hostcall.NewAccumulateDispatcher(ctx, logger)

	exec := pvm.NewExecState(p, mem, gasLimit, accumulatePC, dispatcher)
	exec.WithGasSchedule(consts.Gas)

	pvm.RunUntilHalt(exec, 0)

	gasConsumed = uint64(gasLimit - exec.Gas)
	status = exec.Status

	finalContext := ctx.Current
	if status == pvm.StatusPanic || status == pvm.StatusFault {
		if ctx.Rollback() {
			finalContext = ctx.Current
		} else {
			finalContext = context
		}
	}

	if metrics != nil {
		metrics.observe(gasConsumed, status.String())
	}

	return gasConsumed, exitResult(exec), finalContext, status
}

// exitResult extracts the guest's result blob from register zero on a
// host-requested halt or a clean HALT, or nil for every other terminal status (spec.md
// §4.5: "a host-requested halt sets status HOST with the exit arg in
// register zero").
func exitResult(exec *pvm.ExecState) []byte {
	if exec.Status != pvm.StatusHost && exec.Status != pvm.StatusHalt {
		return nil
	}
	buf := make([]byte, 8)
	v := exec.Registers[0]
	for i := range buf {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

// NewAccumulateContext is a thin re-export so invocation callers don't need
// to import hostcall directly just to build the threaded context Accumulate
// expects.
func NewAccumulateContext(consts config.Constants, serviceID uint64, im state.Implications) *hostcall.AccumulateContext {
	return hostcall.NewAccumulateContext(consts, serviceID, im)
}
