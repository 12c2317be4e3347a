// Package config holds the protocol constants that every conformant
// implementation must agree on: core/validator counts, gas limits, memory
// layout boundaries, and the per-opcode gas schedule. These are the values
// an embedder threads into invocation.Accumulate and invocation.Refine --
// not the node-level CLI/TOML configuration loader, which lives outside
// this module.
package config

// GasSchedule maps an opcode byte to its constant gas charge. The only
// dynamic cost, a per-access-width charge on memory loads and stores, is
// computed separately by the pvm package and is not part of this table.
type GasSchedule [256]uint64

// Constants is the full set of protocol parameters named in spec.md §6.
type Constants struct {
	NumCores              uint32
	NumValidators         uint32
	AuthQueueSize         uint32
	PreimageExpungePeriod uint64
	EpochDuration         uint64
	MaxBlockGas           uint64
	MaxRefineGas          uint64
	PageSize              uint32
	ZoneSize              uint32
	StackSegmentEnd       uint32
	ArgsSegmentStart      uint32
	HaltAddress           uint32
	Gas                   GasSchedule
}

// Defaults returns the conventional "tiny" test-network parameter set used
// throughout this module's tests and examples.
func Defaults() Constants {
	return Constants{
		NumCores:             2,
		NumValidators:        6,
		AuthQueueSize:        8,
		PreimageExpungePeriod: 32,
		EpochDuration:        12,
		MaxBlockGas:          10_000_000,
		MaxRefineGas:         5_000_000,
		PageSize:             4096,
		ZoneSize:             65536,
		StackSegmentEnd:      0xFEFF_0000,
		ArgsSegmentStart:     0xFEFF_0000,
		HaltAddress:          0xFFFF_0000,
		Gas:                  defaultGasSchedule(),
	}
}

// defaultGasSchedule assigns a constant base cost of 1 to every opcode,
// matching the "small constant per opcode class" baseline from spec.md
// §4.5; the pvm package's dynamicGas adds the distinguished cost of memory
// load/store instructions on top of this.
func defaultGasSchedule() GasSchedule {
	var g GasSchedule
	for i := range g {
		g[i] = 1
	}
	return g
}
