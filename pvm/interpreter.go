package pvm

import "encoding/binary"

// operation describes one opcode's execution behavior and its constant gas
// cost, mirroring the dense decoded-operation table spec.md §9 recommends
// in place of deep virtual dispatch.
type operation struct {
	execute func(s *ExecState, operands []byte)
	gas     uint64
}

var jumpTable [256]*operation

func init() {
	jumpTable[OpTrap] = &operation{gas: 1, execute: execTrap}
	jumpTable[OpFallthrough] = &operation{gas: 1, execute: execFallthrough}
	jumpTable[OpHalt] = &operation{gas: 1, execute: execHalt}
	jumpTable[OpLoadImm] = &operation{gas: 1, execute: execLoadImm}
	jumpTable[OpMove] = &operation{gas: 1, execute: execMove}
	jumpTable[OpAdd] = &operation{gas: 1, execute: execAdd}
	jumpTable[OpSub] = &operation{gas: 1, execute: execSub}
	jumpTable[OpMul] = &operation{gas: 1, execute: execMul}
	jumpTable[OpDivU] = &operation{gas: 1, execute: execDivU}
	jumpTable[OpDivS] = &operation{gas: 1, execute: execDivS}
	jumpTable[OpRemU] = &operation{gas: 1, execute: execRemU}
	jumpTable[OpRemS] = &operation{gas: 1, execute: execRemS}
	jumpTable[OpAnd] = &operation{gas: 1, execute: execAnd}
	jumpTable[OpOr] = &operation{gas: 1, execute: execOr}
	jumpTable[OpXor] = &operation{gas: 1, execute: execXor}
	jumpTable[OpShl] = &operation{gas: 1, execute: execShl}
	jumpTable[OpShrU] = &operation{gas: 1, execute: execShrU}
	jumpTable[OpShrS] = &operation{gas: 1, execute: execShrS}
	jumpTable[OpLoad8U] = &operation{gas: 1, execute: execLoad(1, false)}
	jumpTable[OpLoad16U] = &operation{gas: 1, execute: execLoad(2, false)}
	jumpTable[OpLoad32U] = &operation{gas: 1, execute: execLoad(4, false)}
	jumpTable[OpLoad64] = &operation{gas: 1, execute: execLoad(8, false)}
	jumpTable[OpLoad8S] = &operation{gas: 1, execute: execLoad(1, true)}
	jumpTable[OpLoad16S] = &operation{gas: 1, execute: execLoad(2, true)}
	jumpTable[OpLoad32S] = &operation{gas: 1, execute: execLoad(4, true)}
	jumpTable[OpStore8] = &operation{gas: 1, execute: execStore(1)}
	jumpTable[OpStore16] = &operation{gas: 1, execute: execStore(2)}
	jumpTable[OpStore32] = &operation{gas: 1, execute: execStore(4)}
	jumpTable[OpStore64] = &operation{gas: 1, execute: execStore(8)}
	jumpTable[OpBranchEq] = &operation{gas: 1, execute: execBranch(func(a, b uint64) bool { return a == b })}
	jumpTable[OpBranchNe] = &operation{gas: 1, execute: execBranch(func(a, b uint64) bool { return a != b })}
	jumpTable[OpJump] = &operation{gas: 1, execute: execJump}
	jumpTable[OpEcalli] = &operation{gas: 1, execute: execEcalli}
}

// Step executes exactly one instruction, advancing PC and updating Status.
// It is a no-op if the state is already in a terminal status.
func Step(s *ExecState) {
	if s.Status != StatusRunning {
		return
	}

	code := s.Program.Code
	if int(s.PC) >= len(code) {
		s.Status = StatusPanic
		return
	}

	op := code[s.PC]
	entry := jumpTable[op]
	length := InstructionLen(op)
	if entry == nil || length == 0 {
		s.Status = StatusPanic
		return
	}
	if int(s.PC)+length > len(code) {
		s.Status = StatusPanic
		return
	}

	cost := chargeCost(s.GasSchedule, op)
	if s.Gas < int64(cost) {
		s.Status = StatusOOG
		return
	}
	s.Gas -= int64(cost)

	operands := code[int(s.PC)+1 : int(s.PC)+length]
	nextPC := s.PC + uint32(length)
	s.jumped = false
	entry.execute(s, operands)
	if s.Status == StatusRunning && !s.jumped {
		s.PC = nextPC
	}
}

// RunUntilHalt steps the state until it reaches a terminal status or
// maxSteps have been executed, whichever comes first. maxSteps <= 0 means
// unbounded.
func RunUntilHalt(s *ExecState, maxSteps int) {
	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		if s.Status != StatusRunning {
			return
		}
		Step(s)
	}
}

func execTrap(s *ExecState, _ []byte) {
	s.Status = StatusPanic
}

func execFallthrough(_ *ExecState, _ []byte) {}

func execHalt(s *ExecState, _ []byte) {
	s.Status = StatusHalt
}

func execLoadImm(s *ExecState, ops []byte) {
	dst := ops[0]
	imm := binary.LittleEndian.Uint64(ops[1:9])
	s.setReg(dst, imm)
}

func execMove(s *ExecState, ops []byte) {
	s.setReg(ops[0], s.reg(ops[1]))
}

func binOp(f func(a, b uint64) uint64) func(*ExecState, []byte) {
	return func(s *ExecState, ops []byte) {
		a := s.reg(ops[1])
		b := s.reg(ops[2])
		s.setReg(ops[0], f(a, b))
	}
}

var execAdd = binOp(func(a, b uint64) uint64 { return a + b })
var execSub = binOp(func(a, b uint64) uint64 { return a - b })
var execMul = binOp(func(a, b uint64) uint64 { return a * b })
var execAnd = binOp(func(a, b uint64) uint64 { return a & b })
var execOr = binOp(func(a, b uint64) uint64 { return a | b })
var execXor = binOp(func(a, b uint64) uint64 { return a ^ b })

// execDivU and execRemU never trap on division by zero: the result is 0 for
// the quotient and the dividend for the remainder (spec.md §4.5).
var execDivU = binOp(func(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return a / b
})

var execRemU = binOp(func(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
})

var execDivS = binOp(func(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	if sb == 0 {
		return 0
	}
	return uint64(sa / sb)
})

var execRemS = binOp(func(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	if sb == 0 {
		return a
	}
	return uint64(sa % sb)
})

// shift amounts are masked to operand-width-minus-one (63 for a 64-bit
// register), matching the no-trap convention of the arithmetic ops.
var execShl = binOp(func(a, b uint64) uint64 { return a << (b & 63) })
var execShrU = binOp(func(a, b uint64) uint64 { return a >> (b & 63) })
var execShrS = binOp(func(a, b uint64) uint64 { return uint64(int64(a) >> (b & 63)) })

func execLoad(width int, signExtend bool) func(*ExecState, []byte) {
	return func(s *ExecState, ops []byte) {
		dst := ops[0]
		base := s.reg(ops[1])
		offset := int32(binary.LittleEndian.Uint32(ops[2:6]))
		addr := uint32(int64(base) + int64(offset))

		data, err := s.Memory.Read(addr, width)
		if err != nil {
			s.Status = StatusFault
			s.Fault = err.(*FaultError)
			return
		}

		var buf [8]byte
		copy(buf[:width], data)
		v := binary.LittleEndian.Uint64(buf[:])
		if signExtend && width < 8 {
			shift := uint(64 - width*8)
			v = uint64(int64(v<<shift) >> shift)
		}
		s.setReg(dst, v)
	}
}

func execStore(width int) func(*ExecState, []byte) {
	return func(s *ExecState, ops []byte) {
		base := s.reg(ops[0])
		offset := int32(binary.LittleEndian.Uint32(ops[1:5]))
		src := s.reg(ops[5])
		addr := uint32(int64(base) + int64(offset))

		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], src)
		if err := s.Memory.Write(addr, buf[:width]); err != nil {
			s.Status = StatusFault
			s.Fault = err.(*FaultError)
		}
	}
}

func execBranch(cond func(a, b uint64) bool) func(*ExecState, []byte) {
	return func(s *ExecState, ops []byte) {
		if !cond(s.reg(ops[0]), s.reg(ops[1])) {
			return
		}
		target := binary.LittleEndian.Uint32(ops[2:6])
		if !s.Program.IsBranchTarget(int(target)) {
			s.Status = StatusPanic
			return
		}
		s.PC = target
		s.jumped = true
	}
}

func execJump(s *ExecState, ops []byte) {
	target := binary.LittleEndian.Uint32(ops[0:4])
	if !s.Program.IsBranchTarget(int(target)) {
		s.Status = StatusPanic
		return
	}
	s.PC = target
	s.jumped = true
}

// execEcalli traps out to the host dispatcher and, per spec.md §4.5 and
// §5's "host calls execute to completion before the interpreter resumes",
// returns control to the guest afterward: Status stays StatusRunning so the
// next Step() continues at the following instruction. The dispatcher has
// full access to s and MAY itself set Status to StatusHost (a
// host-requested halt, exit arg in register zero) to terminate the
// invocation instead -- no function in the current host-call surface does
// so, since guest programs signal completion via OpHalt, but the hook
// exists for one that needs to.
func execEcalli(s *ExecState, ops []byte) {
	id := binary.LittleEndian.Uint32(ops[0:4])
	s.HostFunctionID = uint64(id)
	if s.Host != nil {
		s.Host.Dispatch(s, s.HostFunctionID)
	}
}
