// Package invocation drives one complete accumulate or refine execution:
// decode the program (with a cache), set up memory and registers, run the
// interpreter to completion, and return the deterministic result triple.
// See spec.md §4.7 and §6.
package invocation

import (
	"github.com/VictoriaMetrics/fastcache"
	"golang.org/x/crypto/blake2b"

	"github.com/Esscrypt/peanutbutterandjam-sub010/config"
	"github.com/Esscrypt/peanutbutterandjam-sub010/program"
)

// ProgramCache memoizes decoded programs by code hash, so repeated
// invocations of the same service code skip re-decoding the branch-target
// bitmask and jump table (spec.md §9 "Decoded-program cache").
type ProgramCache struct {
	cache *fastcache.Cache
}

// NewProgramCache builds a cache sized maxBytes.
func NewProgramCache(maxBytes int) *ProgramCache {
	return &ProgramCache{cache: fastcache.New(maxBytes)}
}

// Decode returns the DecodedProgram for blob, consulting and populating the
// cache by blake2b-256(blob).
func (c *ProgramCache) Decode(blob []byte, consts config.Constants) (*program.DecodedProgram, error) {
	key := blake2b.Sum256(blob)
	if c.cache != nil {
		if cached, ok := c.cache.HasGet(nil, key[:]); ok {
			p, _, err := program.Decode(cached, consts)
			if err == nil {
				return p, nil
			}
		}
	}

	p, _, err := program.DecodePreimage(blob, consts)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		reencoded := program.Encode(nil, p.JumpTable, p.Code, p.Bitmask)
		c.cache.Set(key[:], reencoded)
	}
	return p, nil
}
