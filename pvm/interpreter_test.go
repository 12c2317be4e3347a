package pvm

import (
	"encoding/binary"
	"testing"

	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/program"
)

func buildProgram(t *testing.T, code []byte, branchTargets []int) *program.DecodedProgram {
	t.Helper()
	consts := config.Defaults()
	bitmask := make([]byte, (len(code)+7)/8)
	for _, off := range branchTargets {
		bitmask[off/8] |= 1 << uint(off%8)
	}
	enc := program.Encode(nil, nil, code, bitmask)
	p, _, err := program.Decode(enc, consts)
	if err != nil {
		t.Fatalf("decode program: %v", err)
	}
	return p
}

func newState(t *testing.T, code []byte, branchTargets []int, gas int64) *ExecState {
	t.Helper()
	consts := config.Defaults()
	p := buildProgram(t, code, branchTargets)
	mem := NewMemory(consts, nil)
	return NewExecState(p, mem, gas, 0, nil)
}

func loadImm(reg byte, v uint64) []byte {
	buf := make([]byte, 10)
	buf[0] = byte(OpLoadImm)
	buf[1] = reg
	binary.LittleEndian.PutUint64(buf[2:], v)
	return buf
}

func TestStepLoadImmAndAdd(t *testing.T) {
	code := append(loadImm(3, 40), append(loadImm(4, 2), byte(OpAdd), 5, 3, 4, byte(OpHalt))...)
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Status != StatusHalt {
		t.Fatalf("status = %v, want halt", s.Status)
	}
	if s.Registers[5] != 42 {
		t.Fatalf("r5 = %d, want 42", s.Registers[5])
	}
}

func TestStepSubWraps(t *testing.T) {
	code := append(loadImm(1, 0), append(loadImm(2, 1), byte(OpSub), 3, 1, 2, byte(OpHalt))...)
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Registers[3] != ^uint64(0) {
		t.Fatalf("r3 = %d, want max uint64 (wraparound)", s.Registers[3])
	}
}

func TestDivUByZeroReturnsZero(t *testing.T) {
	code := append(loadImm(1, 7), append(loadImm(2, 0), byte(OpDivU), 3, 1, 2, byte(OpHalt))...)
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Status == StatusPanic || s.Status == StatusFault {
		t.Fatalf("division by zero must not trap, got status %v", s.Status)
	}
	if s.Registers[3] != 0 {
		t.Fatalf("r3 = %d, want 0", s.Registers[3])
	}
}

func TestRemUByZeroReturnsDividend(t *testing.T) {
	code := append(loadImm(1, 7), append(loadImm(2, 0), byte(OpRemU), 3, 1, 2, byte(OpHalt))...)
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Registers[3] != 7 {
		t.Fatalf("r3 = %d, want 7", s.Registers[3])
	}
}

func TestShiftAmountMasked(t *testing.T) {
	code := append(loadImm(1, 1), append(loadImm(2, 64), byte(OpShl), 3, 1, 2, byte(OpHalt))...)
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	// 64 & 63 == 0, so this must be a no-op shift, not undefined behavior.
	if s.Registers[3] != 1 {
		t.Fatalf("r3 = %d, want 1 (shift amount masked to 0)", s.Registers[3])
	}
}

func TestBranchToValidTarget(t *testing.T) {
	// layout: [0] loadImm r1,1 (10 bytes) [10] loadImm r2,1 (10 bytes) [20]
	// branchEq r1,r2,target=28 (7 bytes) [27] trap (1 byte, skipped)
	// [28] target: loadImm r9,99; halt
	target := 20 + 7 + 1 // after branch instr, one trap byte
	code := make([]byte, 0)
	code = append(code, loadImm(1, 1)...)
	code = append(code, loadImm(2, 1)...)
	branchInstr := make([]byte, 7)
	branchInstr[0] = byte(OpBranchEq)
	branchInstr[1] = 1
	branchInstr[2] = 2
	binary.LittleEndian.PutUint32(branchInstr[3:], uint32(target))
	code = append(code, branchInstr...)
	code = append(code, byte(OpTrap))
	code = append(code, loadImm(9, 99)...)
	code = append(code, byte(OpHalt))

	s := newState(t, code, []int{target}, 1000)
	RunUntilHalt(s, 100)
	if s.Status != StatusHalt {
		t.Fatalf("status = %v, want halt", s.Status)
	}
	if s.Registers[9] != 99 {
		t.Fatalf("r9 = %d, want 99 (branch should have skipped the trap)", s.Registers[9])
	}
}

func TestBranchToInvalidTargetPanics(t *testing.T) {
	code := make([]byte, 0)
	code = append(code, loadImm(1, 1)...)
	code = append(code, loadImm(2, 1)...)
	branchInstr := make([]byte, 7)
	branchInstr[0] = byte(OpBranchEq)
	branchInstr[1] = 1
	branchInstr[2] = 2
	binary.LittleEndian.PutUint32(branchInstr[3:], 5) // offset 5 is mid-instruction, not a branch target
	code = append(code, branchInstr...)
	code = append(code, byte(OpHalt))

	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Status != StatusPanic {
		t.Fatalf("status = %v, want panic landing on a non-branch-target offset", s.Status)
	}
}

func TestOutOfGasHalts(t *testing.T) {
	code := append(loadImm(1, 1), byte(OpHalt))
	s := newState(t, code, nil, 1) // one unit of gas: only the loadImm fits
	RunUntilHalt(s, 100)
	if s.Status != StatusOOG {
		t.Fatalf("status = %v, want oog", s.Status)
	}
}

func TestEcalliTrapsToHostThenResumes(t *testing.T) {
	ecalli := make([]byte, 5)
	ecalli[0] = byte(OpEcalli)
	binary.LittleEndian.PutUint32(ecalli[1:], 7)
	code := append(ecalli, byte(OpHalt))

	s := newState(t, code, nil, 1000)
	Step(s)
	if s.Status != StatusRunning {
		t.Fatalf("status after host call = %v, want running (execution must resume)", s.Status)
	}
	if s.HostFunctionID != 7 {
		t.Fatalf("host function id = %d, want 7", s.HostFunctionID)
	}
	if s.PC != uint32(len(ecalli)) {
		t.Fatalf("PC = %d, want %d (advanced past the ECALLI)", s.PC, len(ecalli))
	}

	Step(s)
	if s.Status != StatusHalt {
		t.Fatalf("status after halt = %v, want halt", s.Status)
	}
}

func TestEcalliDispatchCanRequestTerminalHalt(t *testing.T) {
	ecalli := make([]byte, 5)
	ecalli[0] = byte(OpEcalli)
	binary.LittleEndian.PutUint32(ecalli[1:], 9)
	code := append(ecalli, byte(OpTrap))

	s := newState(t, code, nil, 1000)
	s.Host = haltingDispatcher{}
	Step(s)
	if s.Status != StatusHost {
		t.Fatalf("status = %v, want host (dispatcher requested a halt)", s.Status)
	}
	if s.jumped {
		t.Fatal("a dispatcher-requested halt is not a jump")
	}
}

// haltingDispatcher simulates a host call that terminates the invocation,
// exercising the hook execEcalli leaves available for one.
type haltingDispatcher struct{}

func (haltingDispatcher) Dispatch(s *ExecState, functionID uint64) {
	s.Status = StatusHost
}

func TestLoadStoreRoundTrip(t *testing.T) {
	consts := config.Defaults()
	store := make([]byte, 7)
	store[0] = byte(OpStore64)
	store[1] = 1 // addr reg
	binary.LittleEndian.PutUint32(store[2:6], 0)
	store[6] = 2 // src reg

	load := make([]byte, 7)
	load[0] = byte(OpLoad64)
	load[1] = 3 // dst
	load[2] = 1 // addr reg
	binary.LittleEndian.PutUint32(load[3:], 0)

	code := append(loadImm(1, 0), append(loadImm(2, 424242), append(store, append(load, byte(OpHalt))...)...)...)
	p := buildProgram(t, code, nil)
	mem := NewMemory(consts, nil)
	mem.Sbrk(int64(consts.PageSize))
	s := NewExecState(p, mem, 1000, 0, nil)
	RunUntilHalt(s, 100)
	if s.Status != StatusHalt {
		t.Fatalf("status = %v, want halt", s.Status)
	}
	if s.Registers[3] != 424242 {
		t.Fatalf("r3 = %d, want 424242", s.Registers[3])
	}
}

func TestRegisterOutOfRangePanics(t *testing.T) {
	code := append(loadImm(200, 1), byte(OpHalt))
	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Status != StatusPanic {
		t.Fatalf("status = %v, want panic for out-of-range register index", s.Status)
	}
}

func TestGasScheduleOverridesConstantCost(t *testing.T) {
	consts := config.Defaults()
	schedule := consts.Gas
	schedule[OpLoadImm] = 50
	code := append(loadImm(1, 1), byte(OpHalt))
	s := newState(t, code, nil, 49)
	s.WithGasSchedule(schedule)
	Step(s)
	if s.Status != StatusOOG {
		t.Fatalf("status = %v, want oog under an expensive schedule", s.Status)
	}
}

func TestLoadFaultsOnUnmappedMemory(t *testing.T) {
	load := make([]byte, 7)
	load[0] = byte(OpLoad64)
	load[1] = 3
	load[2] = 1
	binary.LittleEndian.PutUint32(load[3:], 0)
	code := append(loadImm(1, 0), append(load, byte(OpHalt))...)

	s := newState(t, code, nil, 1000)
	RunUntilHalt(s, 100)
	if s.Status != StatusFault {
		t.Fatalf("status = %v, want fault reading unmapped heap", s.Status)
	}
}
