package pvm

import (
	"bytes"
	"testing"

	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
)

func TestMemoryArgsSeeded(t *testing.T) {
	consts := config.Defaults()
	args := []byte("hello world")
	m := NewMemory(consts, args)
	got, err := m.Read(consts.ArgsSegmentStart, len(args))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, args) {
		t.Fatalf("got %q, want %q", got, args)
	}
}

func TestMemoryArgsReadOnly(t *testing.T) {
	consts := config.Defaults()
	m := NewMemory(consts, []byte("x"))
	err := m.Write(consts.ArgsSegmentStart, []byte("y"))
	if err == nil {
		t.Fatal("expected a fault writing to the read-only args region")
	}
	if _, ok := err.(*FaultError); !ok {
		t.Fatalf("expected *FaultError, got %T", err)
	}
}

func TestMemoryUnmappedFaults(t *testing.T) {
	consts := config.Defaults()
	m := NewMemory(consts, nil)
	_, err := m.Read(consts.ZoneSize*100, 1)
	if err == nil {
		t.Fatal("expected a fault reading unmapped memory")
	}
}

func TestMemorySbrkGrowsHeap(t *testing.T) {
	consts := config.Defaults()
	m := NewMemory(consts, nil)
	end, ok := m.Sbrk(int64(consts.PageSize))
	if !ok {
		t.Fatal("sbrk should succeed growing from zero heap")
	}
	if end != consts.PageSize {
		t.Fatalf("heap end %d, want %d", end, consts.PageSize)
	}
	if err := m.Write(0, []byte{0x42}); err != nil {
		t.Fatalf("expected write to succeed after sbrk: %v", err)
	}
}

func TestMemorySbrkRetreatBelowZeroFails(t *testing.T) {
	consts := config.Defaults()
	m := NewMemory(consts, nil)
	_, ok := m.Sbrk(-1)
	if ok {
		t.Fatal("sbrk should fail retreating below the current heap base")
	}
}

func TestMemorySbrkCollisionWithStackFails(t *testing.T) {
	consts := config.Defaults()
	m := NewMemory(consts, nil)
	_, ok := m.Sbrk(int64(consts.StackSegmentEnd) + int64(consts.PageSize))
	if ok {
		t.Fatal("sbrk should fail colliding with the stack region")
	}
}
