package invocation

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/hostcall"
	"github.com/Esscrypt/peanutbutterandjam-sub010/log"
	"github.com/Esscrypt/peanutbutterandjam-sub010/pvm"
	"github.com/Esscrypt/peanutbutterandjam-sub010/state"
)

// refinePC is the fixed entry point every refine invocation starts its
// program counter at (spec.md §4.7).
const refinePC = 0

// RefineInput bundles the read-only system buffers one refine invocation
// is given: the encoded work package, its extrinsics, the import segments
// it was granted, and the authorizer trace.
type RefineInput struct {
	WorkPackage     []byte
	Extrinsics      []byte
	ImportSegments  []byte
	AuthorizerTrace []byte
}

// Refine runs one refine invocation to completion and returns the
// deterministic (gasConsumed, result) pair. Unlike Accumulate, refine
// carries no threaded world-state context across the call -- its outputs
// are the result blob and the gas spent, per spec.md §4.7.
func Refine(
	gasLimit int64,
	programBlob []byte,
	args []byte,
	input RefineInput,
	historicalAccount state.ServiceAccount,
	lookupAnchorTimeslot uint64,
	consts config.Constants,
	cache *ProgramCache,
	logger *log.Logger,
	metrics *Metrics,
) (gasConsumed uint64, result []byte, status pvm.Status) {
	p, err := cache.Decode(programBlob, consts)
	if err != nil {
		return 0, nil, pvm.StatusPanic
	}

	mem := pvm.NewMemory(consts, args)

	var buffers [hostcall.BufferAuthorizerTrace + 1][]byte
	buffers[hostcall.BufferWorkPackage] = input.WorkPackage
	buffers[hostcall.BufferExtrinsics] = input.Extrinsics
	buffers[hostcall.BufferImportSegments] = input.ImportSegments
	buffers[hostcall.BufferAuthorizerTrace] = input.AuthorizerTrace

	ctx := hostcall.NewRefineContext(consts, buffers, historicalAccount, lookupAnchorTimeslot)
	dispatcher := hostcall.NewRefineDispatcher(ctx, logger)

	exec := pvm.NewExecState(p, mem, gasLimit, refinePC, dispatcher)
	exec.WithGasSchedule(consts.Gas)

	pvm.RunUntilHalt(exec, 0)

	gasConsumed = uint64(gasLimit - exec.Gas)
	status = exec.Status

	if metrics != nil {
		metrics.observe(gasConsumed, status.String())
	}

	return gasConsumed, exitResult(exec), status
}
