// Package hostcall implements the ECALLI host-call dispatcher: storage and
// preimage I/O, the preimage-request state machine, service lifecycle
// operations, and the refine-only inner-machine operations. See spec.md
// §4.6 and §7.
package hostcall

// Error is the closed set of host-call result codes a handler returns to
// the guest in its output register. It crosses the guest/host boundary as
// a plain register value, never wrapped in a Go error (spec.md §7).
type Error uint64

const (
	ErrNone Error = iota
	ErrWhat            // malformed arguments
	ErrOOB             // out-of-bounds memory access
	ErrWho             // unknown service
	ErrFull            // resource exhausted
	ErrCore            // core-assignment conflict
	ErrCash            // insufficient balance
	ErrLow             // below minimum balance after the operation
	ErrHuh             // unexpected state
	ErrOK              // operation succeeded with no further detail to report
)

func (e Error) String() string {
	switch e {
	case ErrNone:
		return "NONE"
	case ErrWhat:
		return "WHAT"
	case ErrOOB:
		return "OOB"
	case ErrWho:
		return "WHO"
	case ErrFull:
		return "FULL"
	case ErrCore:
		return "CORE"
	case ErrCash:
		return "CASH"
	case ErrLow:
		return "LOW"
	case ErrHuh:
		return "HUH"
	case ErrOK:
		return "OK"
	default:
		return "UNKNOWN"
	}
}
