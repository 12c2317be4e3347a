package crypto

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

const seedLen = 32

// domain-separation labels for the two JIP-5 hash derivations. The exact
// byte values are an implementation choice (see DESIGN.md): no retained
// reference source pins them down. The known-answer test in keyderiv_test.go
// fixes these exact labels, so changing either one changes the derived seeds.
var (
	ed25519Label      = []byte("jam_val_key_ed25519")
	bandersnatchLabel = []byte("jam_val_key_bandersnatch")
)

// SecretSeeds holds the two 32-byte secret seeds JIP-5 derives from a single
// validator seed: one to be used as an Ed25519 private key seed, one as a
// Bandersnatch private key seed.
type SecretSeeds struct {
	Ed25519      [32]byte
	Bandersnatch [32]byte
}

// TrivialSeed builds the deterministic test seed for validator index i: the
// 4-byte little-endian encoding of i, repeated 8 times. Fails with
// InvalidIndex if i does not fit in 32 bits.
func TrivialSeed(i uint64) ([32]byte, error) {
	var out [32]byte
	if i > math.MaxUint32 {
		return out, newErr(InvalidIndex, "trivial seed index %d exceeds 2^32-1", i)
	}
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(i))
	for j := 0; j < 8; j++ {
		copy(out[4*j:4*j+4], word[:])
	}
	return out, nil
}

// DeriveSecretSeeds runs the two domain-separated blake2b-256 derivations
// over a 32-byte seed. Fails with InvalidSeedLength if seed is not exactly
// 32 bytes.
func DeriveSecretSeeds(seed []byte) (SecretSeeds, error) {
	if len(seed) != seedLen {
		return SecretSeeds{}, newErr(InvalidSeedLength, "seed length %d, want %d", len(seed), seedLen)
	}
	var seeds SecretSeeds
	seeds.Ed25519 = derive(ed25519Label, seed)
	seeds.Bandersnatch = derive(bandersnatchLabel, seed)
	return seeds, nil
}

func derive(label, seed []byte) [32]byte {
	buf := make([]byte, 0, len(label)+len(seed))
	buf = append(buf, label...)
	buf = append(buf, seed...)
	return blake2b.Sum256(buf)
}

// DerivePublicKey computes the Ed25519 public key for a 32-byte secret seed
// (e.g. SecretSeeds.Ed25519). Fails with InvalidSeedLength otherwise.
func DerivePublicKey(secretSeed []byte) ([32]byte, error) {
	var out [32]byte
	if len(secretSeed) != ed25519.SeedSize {
		return out, newErr(InvalidSeedLength, "ed25519 seed length %d, want %d", len(secretSeed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(secretSeed)
	pub := priv.Public().(ed25519.PublicKey)
	copy(out[:], pub)
	return out, nil
}
