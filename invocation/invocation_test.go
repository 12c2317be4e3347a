package invocation

import (
	"testing"

	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/program"
	"github.com/Esscrypt/peanutbutterandjam-sub010/pvm"
	"github.com/Esscrypt/peanutbutterandjam-sub010/state"
)

func buildHaltOnlyProgram(pc int) []byte {
	code := make([]byte, pc+1)
	for i := 0; i < pc; i++ {
		code[i] = byte(pvm.OpFallthrough)
	}
	code[pc] = byte(pvm.OpHalt)
	bitmask := make([]byte, (len(code)+7)/8)
	return program.EncodePreimage(nil, nil, code, bitmask)
}

func TestAccumulateHaltsCleanly(t *testing.T) {
	consts := config.Defaults()
	cache := NewProgramCache(1024 * 1024)
	blob := buildHaltOnlyProgram(accumulatePC)

	im := state.Implications{
		State: state.PartialState{
			Accounts:  []state.AccountEntry{{ID: 7, Account: state.ServiceAccount{Balance: 10}}},
			Staging:   make([][336]byte, consts.NumValidators),
			AuthQueue: make([][][32]byte, consts.NumCores),
			Assigners: make([]uint64, consts.NumCores),
		},
	}

	gasConsumed, _, newCtx, status := Accumulate(10_000, blob, nil, 7, im, consts, cache, nil, nil)
	if status != pvm.StatusHalt {
		t.Fatalf("status = %v, want halt", status)
	}
	if gasConsumed == 0 {
		t.Fatal("expected some gas to have been consumed")
	}
	if len(newCtx.State.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(newCtx.State.Accounts))
	}
}

func TestAccumulateGasNeverExceedsLimit(t *testing.T) {
	consts := config.Defaults()
	cache := NewProgramCache(1024 * 1024)
	blob := buildHaltOnlyProgram(accumulatePC)
	im := state.Implications{
		State: state.PartialState{
			Staging:   make([][336]byte, consts.NumValidators),
			AuthQueue: make([][][32]byte, consts.NumCores),
			Assigners: make([]uint64, consts.NumCores),
		},
	}

	gasConsumed, _, _, _ := Accumulate(3, blob, nil, 7, im, consts, cache, nil, nil)
	if gasConsumed > 3 {
		t.Fatalf("gas consumed %d exceeds limit 3", gasConsumed)
	}
}

func TestAccumulatePanicWithoutCheckpointKeepsOriginalContext(t *testing.T) {
	consts := config.Defaults()
	cache := NewProgramCache(1024 * 1024)

	// trap immediately: execution starts at accumulatePC (the fallthrough
	// bytes before it only pad the code) and traps there, producing a panic
	// with nothing checkpointed -- the driver must fall back to the original
	// context unchanged.
	code := make([]byte, accumulatePC+1)
	for i := 0; i < accumulatePC; i++ {
		code[i] = byte(pvm.OpFallthrough)
	}
	code[accumulatePC] = byte(pvm.OpTrap)
	bitmask := make([]byte, (len(code)+7)/8)
	blob := program.EncodePreimage(nil, nil, code, bitmask)

	im := state.Implications{
		State: state.PartialState{
			Accounts:  []state.AccountEntry{{ID: 7, Account: state.ServiceAccount{Balance: 55}}},
			Staging:   make([][336]byte, consts.NumValidators),
			AuthQueue: make([][][32]byte, consts.NumCores),
			Assigners: make([]uint64, consts.NumCores),
		},
	}

	_, _, newCtx, status := Accumulate(10_000, blob, nil, 7, im, consts, cache, nil, nil)
	if status != pvm.StatusPanic {
		t.Fatalf("status = %v, want panic", status)
	}
	if newCtx.State.Accounts[0].Account.Balance != 55 {
		t.Fatalf("balance after rollback = %d, want unchanged 55", newCtx.State.Accounts[0].Account.Balance)
	}
}

func TestRefineHaltsCleanly(t *testing.T) {
	consts := config.Defaults()
	cache := NewProgramCache(1024 * 1024)
	blob := buildHaltOnlyProgram(refinePC)

	gasConsumed, _, status := Refine(10_000, blob, nil, RefineInput{WorkPackage: []byte("wp")}, state.ServiceAccount{}, 0, consts, cache, nil, nil)
	if status != pvm.StatusHalt {
		t.Fatalf("status = %v, want halt", status)
	}
	if gasConsumed == 0 {
		t.Fatal("expected some gas to have been consumed")
	}
}

func TestProgramCacheReturnsEquivalentDecodedProgram(t *testing.T) {
	consts := config.Defaults()
	cache := NewProgramCache(1024 * 1024)
	blob := buildHaltOnlyProgram(3)

	first, err := cache.Decode(blob, consts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Decode(blob, consts)
	if err != nil {
		t.Fatal(err)
	}
	if string(first.Code) != string(second.Code) {
		t.Fatal("cached decode should reproduce the same code bytes")
	}
}
