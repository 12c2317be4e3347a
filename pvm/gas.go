package pvm

import "github.com/Esscrypt/peanutbutterandjam-sub010/config"

// dynamicGas returns the opcode-specific charge on top of the schedule's
// constant base cost. Only memory instructions carry a dynamic component in
// this instruction set, charged per byte moved (spec.md §4.5: "Charge the
// instruction's gas cost: a constant component from the per-opcode schedule,
// plus a dynamic component for instructions whose cost depends on operand
// values").
func dynamicGas(op byte) uint64 {
	switch Opcode(op) {
	case OpLoad8U, OpLoad8S, OpStore8:
		return 1
	case OpLoad16U, OpLoad16S, OpStore16:
		return 2
	case OpLoad32U, OpLoad32S, OpStore32:
		return 4
	case OpLoad64, OpStore64:
		return 8
	default:
		return 0
	}
}

// chargeCost computes the total gas an instruction costs under a schedule:
// the schedule's constant per-opcode entry first, then the dynamic
// component. Charging order matters for OOG diagnostics but not for the
// final gas-remaining value, since both components are deducted from the
// same counter before execution.
func chargeCost(schedule *config.GasSchedule, op byte) uint64 {
	var constant uint64 = 1
	if schedule != nil {
		constant = schedule[op]
	}
	return constant + dynamicGas(op)
}
