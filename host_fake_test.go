package beefy_test

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	beefy "github.com/cosmos/ibc-go-beefy"
)

// fakeValidator bundles a secp256k1 key with its derived beefy address,
// for building toy authority sets in tests.
type fakeValidator struct {
	key     *ecdsa.PrivateKey
	address [20]byte
}

func newFakeValidator() fakeValidator {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	var v fakeValidator
	v.key = key
	copy(v.address[:], addr[:])
	return v
}

func (v fakeValidator) sign(host beefy.Host, msg beefy.Hash) beefy.CommitmentSignature {
	sig, err := crypto.Sign(msg[:], v.key)
	if err != nil {
		panic(err)
	}
	sig[64] += 27

	var out beefy.CommitmentSignature
	out.Present = true
	copy(out.Signature[:], sig)
	return out
}

// authorityLeafHash is keccak256(address), the leaf value the authority
// Merkle tree is built over.
func authorityLeafHash(host beefy.Host, v fakeValidator) beefy.Hash {
	return host.Keccak256(v.address[:])
}
