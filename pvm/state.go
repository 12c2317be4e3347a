package pvm

import (
	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/program"
)

// Status is the terminal or in-progress condition of an execution state,
// per spec.md §4.5's fetch-decode-execute loop.
type Status byte

const (
	StatusRunning Status = iota
	StatusHalt
	StatusPanic
	StatusFault
	StatusHost
	StatusOOG
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusHalt:
		return "halt"
	case StatusPanic:
		return "panic"
	case StatusFault:
		return "fault"
	case StatusHost:
		return "host"
	case StatusOOG:
		return "oog"
	default:
		return "unknown"
	}
}

// HostDispatcher handles an ECALLI trap. Implementations live in the
// hostcall package, which imports pvm; pvm never imports hostcall, so the
// dependency runs one way only.
type HostDispatcher interface {
	Dispatch(s *ExecState, functionID uint64)
}

// ExecState is the mutable state one interpreter run advances: the
// register file, program counter, remaining gas, and the terminal status
// once the run stops.
type ExecState struct {
	PC             uint32
	Registers      [program.NumRegisters]uint64
	Gas            int64
	Status         Status
	Fault          *FaultError
	HostFunctionID uint64

	Memory  *Memory
	Program *program.DecodedProgram
	Host    HostDispatcher

	GasSchedule *config.GasSchedule // nil means every opcode costs 1 plus its dynamic component

	jumped bool // set by branch/jump executors to suppress the default PC advance
}

// NewExecState builds a fresh execution state starting at startPC with the
// program's initial register file copied in (spec.md §4.3).
func NewExecState(p *program.DecodedProgram, mem *Memory, gasLimit int64, startPC uint32, host HostDispatcher) *ExecState {
	s := &ExecState{
		PC:      startPC,
		Gas:     gasLimit,
		Status:  StatusRunning,
		Memory:  mem,
		Program: p,
		Host:    host,
	}
	s.Registers = p.InitialRegisters
	return s
}

// WithGasSchedule sets the per-opcode gas schedule the state charges
// against, returning s for chaining.
func (s *ExecState) WithGasSchedule(schedule config.GasSchedule) *ExecState {
	s.GasSchedule = &schedule
	return s
}

func (s *ExecState) reg(i byte) uint64 {
	if int(i) >= program.NumRegisters {
		s.Status = StatusPanic
		return 0
	}
	return s.Registers[i]
}

func (s *ExecState) setReg(i byte, v uint64) {
	if int(i) >= program.NumRegisters {
		s.Status = StatusPanic
		return
	}
	s.Registers[i] = v
}
