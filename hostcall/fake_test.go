package hostcall

// fakeExecState is a minimal execState for unit-testing individual
// handlers without needing a real pvm.ExecState and Memory.
type fakeExecState struct {
	registers [16]uint64
	gas       int64
	mem       map[uint32]byte
}

func newFakeExecState() *fakeExecState {
	return &fakeExecState{mem: make(map[uint32]byte)}
}

func (f *fakeExecState) Register(i int) uint64     { return f.registers[i] }
func (f *fakeExecState) SetRegister(i int, v uint64) { f.registers[i] = v }
func (f *fakeExecState) GasRemaining() int64        { return f.gas }

func (f *fakeExecState) ReadMemory(addr uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = f.mem[addr+uint32(i)]
	}
	return out, nil
}

func (f *fakeExecState) WriteMemory(addr uint32, data []byte) error {
	for i, b := range data {
		f.mem[addr+uint32(i)] = b
	}
	return nil
}
