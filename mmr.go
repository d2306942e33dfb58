package beefy

import "math/bits"

// This file adapts the MMR position/peak arithmetic from the Snowbridge
// BEEFY relayer's crypto/merkle/simplified_mmr_proof.go (itself written
// against the same nervos mmr-lib / pallet-mmr conventions the original
// Rust verifier's pallet_mmr::verify_leaf_proof call relies on), but
// implements plain ordered-proof-item verification rather than that
// file's Solidity-oriented pre-ordered/bit-packed "simplified" proof.

func parentOffset(height uint32) uint64 { return 2 << height }

func siblingOffset(height uint32) uint64 { return (2 << height) - 1 }

func getPeakPosByHeight(height uint32) uint64 { return (1 << (height + 1)) - 2 }

// leftPeakHeightPos returns the height and position of the first (tallest,
// leftmost) peak in an MMR of the given size.
func leftPeakHeightPos(mmrSize uint64) (uint32, uint64) {
	var height uint32 = 1
	var previousPosition uint64
	pos := getPeakPosByHeight(height)
	for pos < mmrSize {
		height++
		previousPosition = pos
		pos = getPeakPosByHeight(height)
	}
	return height - 1, previousPosition
}

// getRightPeak returns the next peak to the right of (height, position),
// or ok=false if there is none.
func getRightPeak(height uint32, position, mmrSize uint64) (ok bool, nh uint32, np uint64) {
	position += siblingOffset(height)
	for position > mmrSize-1 {
		if height == 0 {
			return false, 0, 0
		}
		position -= parentOffset(height - 1)
		height--
	}
	return true, height, position
}

// heightInTree returns the height of the node at 0-indexed MMR position
// pos (0 for a leaf; a node of height h has 2^h leaves beneath it).
func heightInTree(pos uint64) uint32 {
	pos++
	allOnes := func(n uint64) bool {
		zeroCount := 64 - bits.OnesCount64(n)
		return n != 0 && bits.LeadingZeros64(n) == zeroCount
	}
	jumpLeft := func(n uint64) uint64 {
		bitLength := 64 - bits.LeadingZeros64(n)
		msb := uint64(1) << (bitLength - 1)
		return n - (msb - 1)
	}
	for !allOnes(pos) {
		pos = jumpLeft(pos)
	}
	return uint32(64 - bits.LeadingZeros64(pos) - 1)
}

// getPeaks returns the positions of every peak in an MMR of the given
// size, ordered left to right (tallest/smallest-position first).
func getPeaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 {
		return nil
	}
	var peaks []uint64
	height, position := leftPeakHeightPos(mmrSize)
	peaks = append(peaks, position)
	for height > 0 {
		ok, h, p := getRightPeak(height, position, mmrSize)
		if !ok {
			break
		}
		height, position = h, p
		peaks = append(peaks, position)
	}
	return peaks
}

func leafCountToMMRSize(leafCount uint64) uint64 {
	peakCount := uint64(bits.OnesCount64(leafCount))
	return 2*leafCount - peakCount
}

// leafIndexToPosition converts a 0-indexed leaf number to its MMR
// position.
func leafIndexToPosition(index uint64) uint64 {
	return leafCountToMMRSize(index+1) - uint64(bits.TrailingZeros64(index+1)) - 1
}

// climbToPeak merges leafHash with proof items, starting at MMR position
// pos, until reaching peakPos, returning the resulting peak hash. It
// consumes proof[*proofIdx:] from the front, advancing *proofIdx by the
// number of items used.
func climbToPeak(host Host, pos uint64, leafHash Hash, peakPos uint64, proof []Hash, proofIdx *int) (Hash, bool) {
	current := leafHash
	height := uint32(0)

	for pos != peakPos {
		if *proofIdx >= len(proof) {
			return Hash{}, false
		}
		sibling := proof[*proofIdx]
		*proofIdx++

		var parentPos uint64
		var merged Hash
		if heightInTree(pos+1) > height {
			// pos is the right child of its parent; sibling is the left.
			parentPos = pos + 1
			merged = hashPair(host, sibling, current)
		} else {
			// pos is the left child of its parent; sibling is the right.
			parentPos = pos + parentOffset(height)
			merged = hashPair(host, current, sibling)
		}

		current = merged
		pos = parentPos
		height++

		if height > 64 {
			// Defensive: a well-formed proof always reaches peakPos in
			// O(log mmrSize) steps; this bounds a malformed proof from
			// looping forever on a corrupt position value.
			return Hash{}, false
		}
	}
	return current, true
}

func hashPair(host Host, left, right Hash) Hash {
	buf := make([]byte, 0, 2*HashLength)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return host.Keccak256(buf)
}

// VerifyMMRLeafProof verifies that leafHash sits at leafIndex in an MMR
// of leafCount leaves, rooted at root, given proof. Following the layout
// pallet_mmr/mmr-lib actually produce (confirmed against
// simplified_mmr_proof.go's ConvertToSimplifiedMMRProof, which reads the
// raw proof in this same order before repacking it for Solidity), proof
// holds, in order: one hash for every peak to the left of the leaf's
// owning peak, then the bottom-up sibling path from the leaf to its
// owning peak, then — only if peaks lie to its right — a single hash
// bagging all of them together. Per spec §4.4, leaf hashing (keccak256
// of the SCALE-encoded leaf) is the caller's responsibility (see
// update.go); this function only verifies the already-hashed leaf's
// position in the tree.
func VerifyMMRLeafProof(host Host, root Hash, leafHash Hash, leafIndex, leafCount uint64, proof []Hash) bool {
	if leafCount == 0 || leafIndex >= leafCount {
		return false
	}

	mmrSize := leafCountToMMRSize(leafCount)
	peaks := getPeaks(mmrSize)
	if len(peaks) == 0 {
		return false
	}

	leafPos := leafIndexToPosition(leafIndex)

	ownerIdx := -1
	for i, p := range peaks {
		if leafPos <= p {
			ownerIdx = i
			break
		}
	}
	if ownerIdx == -1 || ownerIdx > len(proof) {
		return false
	}

	leftPeakHashes := proof[:ownerIdx]
	proofIdx := ownerIdx

	ownerPeakHash, ok := climbToPeak(host, leafPos, leafHash, peaks[ownerIdx], proof, &proofIdx)
	if !ok {
		return false
	}

	bagged := ownerPeakHash
	if ownerIdx < len(peaks)-1 {
		if proofIdx >= len(proof) {
			return false
		}
		rightBag := proof[proofIdx]
		proofIdx++
		bagged = hashPair(host, bagged, rightBag)
	}
	if proofIdx != len(proof) {
		return false
	}

	// Fold the left peaks in right-to-left, matching the same bagging
	// convention used to produce rightBag above.
	for i := len(leftPeakHashes) - 1; i >= 0; i-- {
		bagged = hashPair(host, leftPeakHashes[i], bagged)
	}

	return bagged == root
}
