package hostcall

// Register convention every handler reads its arguments from and writes
// its result to (spec.md §4.6: "each handler reads its arguments from a
// fixed register convention ... and returns a 64-bit error code in the
// designated output register").
const (
	regErrorCode = 0 // Error, written by every handler before returning
	regResult    = 1 // secondary return value (e.g. GAS's remaining gas)
	regArg0      = 2
	regArg1      = 3
	regArg2      = 4
	regArg3      = 5
	regArg4      = 6
	regArg5      = 7
)

// FunctionID identifies a host call, placed in pvm.ExecState.HostFunctionID
// by the ECALLI instruction.
type FunctionID uint64

const (
	FnGas FunctionID = iota
	FnFetch
	FnLookup
	FnHistoricalLookup
	FnRead
	FnWrite
	FnInfo
	FnLog
	FnBless
	FnAssign
	FnDesignate
	FnCheckpoint
	FnNew
	FnUpgrade
	FnTransfer
	FnEject
	FnQuery
	FnSolicit
	FnForget
	FnYield
	FnProvide
	FnPeek
	FnPoke
	FnPages
	FnMachine
	FnInvoke
	FnExpunge

	fnCount
)
