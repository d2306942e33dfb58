package beefy_test

import (
	"sort"

	beefy "github.com/cosmos/ibc-go-beefy"
)

// These mirror the tree-building and proof-derivation helpers exercised
// against the unexported verifier internals in merkle_test.go, rewritten
// here against only the exported Host.Keccak256 so that client_test.go
// (an external beefy_test package, exercising Client's public surface)
// can build fixtures without reaching into package beefy internals.

func hashPairFake(host beefy.Host, left, right beefy.Hash) beefy.Hash {
	buf := make([]byte, 0, 2*beefy.HashLength)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return host.Keccak256(buf)
}

func authorityTreeRoot(host beefy.Host, leaves []beefy.Hash) beefy.Hash {
	level := leaves
	for len(level) > 1 {
		var next []beefy.Hash
		i := 0
		for i < len(level) {
			if i+1 < len(level) {
				next = append(next, hashPairFake(host, level[i], level[i+1]))
				i += 2
			} else {
				next = append(next, level[i])
				i++
			}
		}
		level = next
	}
	return level[0]
}

func authorityTreeProof(host beefy.Host, leaves []beefy.Hash, indices []uint32) []beefy.Hash {
	totalLeaves := uint32(len(leaves))
	levelHashes := leaves
	provenIdx := append([]uint32(nil), indices...)
	sort.Slice(provenIdx, func(i, j int) bool { return provenIdx[i] < provenIdx[j] })

	var proof []beefy.Hash
	levelSize := totalLeaves
	for levelSize > 1 {
		var nextProven []uint32
		i := 0
		for i < len(provenIdx) {
			idx := provenIdx[i]
			siblingIndex := idx ^ 1
			switch {
			case i+1 < len(provenIdx) && provenIdx[i+1] == siblingIndex:
				nextProven = append(nextProven, idx/2)
				i += 2
			case siblingIndex < levelSize:
				proof = append(proof, levelHashes[siblingIndex])
				nextProven = append(nextProven, idx/2)
				i++
			default:
				nextProven = append(nextProven, idx/2)
				i++
			}
		}

		var nextLevel []beefy.Hash
		j := 0
		for j < len(levelHashes) {
			if j+1 < len(levelHashes) {
				nextLevel = append(nextLevel, hashPairFake(host, levelHashes[j], levelHashes[j+1]))
				j += 2
			} else {
				nextLevel = append(nextLevel, levelHashes[j])
				j++
			}
		}

		levelHashes = nextLevel
		provenIdx = nextProven
		levelSize = (levelSize + 1) / 2
	}

	return proof
}
