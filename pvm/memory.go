// Package pvm implements the paged memory model (C5) and the
// fetch-decode-execute instruction interpreter (C6) of the Polkadot Virtual
// Machine. See spec.md §4.4 and §4.5.
package pvm

import "github.com/Esscrypt/peanutbutterandjam-sub010/config"

// Perm is a page's access permission. READ implies no write; WRITE implies
// read. NONE means the page is unmapped and any access faults.
type Perm byte

const (
	PermNone Perm = iota
	PermRead
	PermWrite
)

// AccessKind is the kind of memory access an instruction performs, recorded
// on a fault for host inspection.
type AccessKind byte

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// FaultError describes a memory-protection violation. The interpreter turns
// this into a terminal FAULT status rather than a Go error it recovers
// from -- spec.md §4.4: "panics the VM".
type FaultError struct {
	Address uint32
	Access  AccessKind
}

func (e *FaultError) Error() string {
	kind := "read"
	if e.Access == AccessWrite {
		kind = "write"
	}
	return "pvm: memory fault on " + kind + " at address " + uitoa(e.Address)
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

type page struct {
	perm Perm
	data []byte
}

// Memory is the PVM's paged 32-bit data address space: a heap growing up
// from zero via sbrk, a fixed-size stack ending at consts.StackSegmentEnd,
// and a read-only args region starting at consts.ArgsSegmentStart. Code is
// addressed separately by the interpreter's program counter, not through
// this address space.
type Memory struct {
	consts  config.Constants
	pages   map[uint32]*page
	heapEnd uint32
	stackLo uint32
	argsLo  uint32
	argsHi  uint32
}

// NewMemory builds the initial memory layout for one invocation: a zero
// heap, a zero-initialized stack page range, and an args region populated
// from args (spec.md §4.3's "Initial memory" description).
func NewMemory(consts config.Constants, args []byte) *Memory {
	m := &Memory{
		consts:  consts,
		pages:   make(map[uint32]*page),
		heapEnd: 0,
		stackLo: consts.StackSegmentEnd - consts.ZoneSize,
		argsLo:  consts.ArgsSegmentStart,
	}
	m.mapRegion(m.stackLo, consts.StackSegmentEnd, PermWrite)

	argsPages := pageAlign(uint32(len(args)), consts.PageSize)
	m.argsHi = consts.ArgsSegmentStart + argsPages
	m.mapRegion(consts.ArgsSegmentStart, m.argsHi, PermRead)
	m.writeRaw(consts.ArgsSegmentStart, args)

	return m
}

func pageAlign(n, pageSize uint32) uint32 {
	if pageSize == 0 {
		return n
	}
	return ((n + pageSize - 1) / pageSize) * pageSize
}

func (m *Memory) mapRegion(lo, hi uint32, perm Perm) {
	for addr := lo; addr < hi; addr += m.consts.PageSize {
		idx := addr / m.consts.PageSize
		m.pages[idx] = &page{perm: perm, data: make([]byte, m.consts.PageSize)}
	}
}

// writeRaw stores bytes directly without permission checks; used only to
// seed the args region at construction time.
func (m *Memory) writeRaw(addr uint32, data []byte) {
	for i, b := range data {
		a := addr + uint32(i)
		p := m.pages[a/m.consts.PageSize]
		p.data[a%m.consts.PageSize] = b
	}
}

// Sbrk extends the heap by delta bytes, page-aligned, returning the new
// heap end. Fails (returns false) if the new end would collide with the
// stack or args regions, or if delta is negative and would retreat the
// heap below zero (spec.md §4.4).
func (m *Memory) Sbrk(delta int64) (newEnd uint32, ok bool) {
	signedEnd := int64(m.heapEnd) + delta
	if signedEnd < 0 {
		return m.heapEnd, false
	}
	aligned := pageAlign(uint32(signedEnd), m.consts.PageSize)
	if aligned > m.stackLo {
		return m.heapEnd, false
	}
	if aligned > m.heapEnd {
		m.mapRegion(m.heapEnd, aligned, PermWrite)
	}
	m.heapEnd = aligned
	return m.heapEnd, true
}

// SetPermission changes the access permission of every page covering
// [lo, hi), mapping previously-unmapped pages as needed. Used by the
// refine-only PAGES host call to grant an inner machine's memory pages to
// its invoker (spec.md §4.6).
func (m *Memory) SetPermission(lo, hi uint32, perm Perm) {
	alignedLo := (lo / m.consts.PageSize) * m.consts.PageSize
	for addr := alignedLo; addr < hi; addr += m.consts.PageSize {
		idx := addr / m.consts.PageSize
		if p, ok := m.pages[idx]; ok {
			p.perm = perm
		} else {
			m.pages[idx] = &page{perm: perm, data: make([]byte, m.consts.PageSize)}
		}
	}
}

// Read copies n bytes starting at addr into a fresh slice, faulting if any
// byte of the range lies on an unmapped or non-readable page.
func (m *Memory) Read(addr uint32, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		a := addr + uint32(i)
		p := m.pages[a/m.consts.PageSize]
		if p == nil || p.perm == PermNone {
			return nil, &FaultError{Address: a, Access: AccessRead}
		}
		out[i] = p.data[a%m.consts.PageSize]
	}
	return out, nil
}

// Write stores data starting at addr, faulting if any byte of the range
// lies on an unmapped or read-only page.
func (m *Memory) Write(addr uint32, data []byte) error {
	for i, b := range data {
		a := addr + uint32(i)
		p := m.pages[a/m.consts.PageSize]
		if p == nil || p.perm != PermWrite {
			return &FaultError{Address: a, Access: AccessWrite}
		}
		p.data[a%m.consts.PageSize] = b
	}
	return nil
}
