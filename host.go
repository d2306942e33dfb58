package beefy

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// Host is the set of cryptographic primitives the ingestion engine needs
// from its embedder: hashing and secp256k1 recovery. Spec-equivalent to
// the Rust crate's HostFunctions trait (original_source/src/traits.rs),
// restated here as a plain interface so it can be passed by reference
// with no associated-type machinery, per the "Replacing associated-type +
// generic storage" design note.
type Host interface {
	// Keccak256 returns the 32-byte keccak digest of input.
	Keccak256(input []byte) Hash

	// Secp256k1EcdsaRecoverCompressed recovers the 33-byte compressed
	// public key that produced sig over msg. It returns ok=false on an
	// invalid recovery id, an off-curve r/s, or any other recovery
	// failure — it never panics on attacker-controlled input.
	Secp256k1EcdsaRecoverCompressed(sig [SignatureLength]byte, msg Hash) (pubkey [33]byte, ok bool)

	// BeefyAddressOf derives the 20-byte Ethereum-style authority address
	// from a compressed secp256k1 public key: decompress, drop the 0x04
	// prefix, take the low 20 bytes of keccak256 of the remaining 64
	// bytes.
	BeefyAddressOf(pubkeyCompressed [33]byte) (address [20]byte, ok bool)
}

// EthereumHost is the reference Host implementation, backed by
// go-ethereum's crypto package — the same library the upstream BEEFY
// relayer tooling uses for keccak-256 and secp256k1 recovery (see
// modules/light-clients/11-beefy/types/update_test.go's getBeefyAuthorities,
// which performs the identical DecompressPubkey -> PubkeyToAddress
// sequence this type implements).
type EthereumHost struct{}

var _ Host = EthereumHost{}

// Keccak256 implements Host.
func (EthereumHost) Keccak256(input []byte) Hash {
	var h Hash
	copy(h[:], crypto.Keccak256(input))
	return h
}

// Secp256k1EcdsaRecoverCompressed implements Host.
func (EthereumHost) Secp256k1EcdsaRecoverCompressed(sig [SignatureLength]byte, msg Hash) ([33]byte, bool) {
	var out [33]byte

	// go-ethereum's Ecrecover/SigToPub expect the recovery id in the low
	// byte normalised to {0, 1}; BEEFY signatures carry it as {27, 28}.
	normalised := sig
	switch normalised[64] {
	case 27, 28:
		normalised[64] -= 27
	case 0, 1:
		// already normalised
	default:
		return out, false
	}

	pub, err := crypto.SigToPub(msg[:], normalised[:])
	if err != nil {
		return out, false
	}

	compressed := crypto.CompressPubkey(pub)
	if len(compressed) != 33 {
		return out, false
	}
	copy(out[:], compressed)
	return out, true
}

// BeefyAddressOf implements Host.
func (EthereumHost) BeefyAddressOf(pubkeyCompressed [33]byte) ([20]byte, bool) {
	var addr [20]byte

	pub, err := crypto.DecompressPubkey(pubkeyCompressed[:])
	if err != nil {
		return addr, false
	}

	ethAddr := crypto.PubkeyToAddress(*pub)
	copy(addr[:], ethAddr[:])
	return addr, true
}
