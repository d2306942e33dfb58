package beefy

import "sort"

// authorityLeaf is one (index, leaf hash) pair being proven, used while
// climbing the authority Merkle tree level by level.
type authorityLeaf struct {
	index uint32
	hash  Hash
}

// VerifyAuthorityProof verifies that the leaves at indices sit beneath
// root in a binary keccak-Merkle tree of exactly totalLeaves leaves,
// given the sibling hashes in proof.
//
// This follows rs_merkle's construction, per spec §4.3: the tree is built
// with the exact leaf count (no padding to the next power of two); a
// level with an odd number of nodes carries its last node up to the next
// level unpaired rather than duplicating it. Leaves are always supplied
// in ascending index order by the caller (update.go); proof hashes are
// consumed in the order a bottom-up, left-to-right traversal produces
// them. Any deviation from this exact convention invalidates otherwise
// valid proofs, so this function is written to match it bit for bit
// rather than delegate to a generic tree library.
func VerifyAuthorityProof(host Host, root Hash, indices []uint32, leaves []Hash, totalLeaves uint32, proof []Hash) bool {
	if len(indices) != len(leaves) || len(indices) == 0 || totalLeaves == 0 {
		return false
	}

	layer := make([]authorityLeaf, len(indices))
	for i := range indices {
		layer[i] = authorityLeaf{index: indices[i], hash: leaves[i]}
	}
	sort.Slice(layer, func(i, j int) bool { return layer[i].index < layer[j].index })

	// Reject duplicate/out-of-range indices up front; a well-formed proof
	// never has them and silently de-duplicating would let a forged
	// update claim fewer distinct signers than it appears to.
	for i, l := range layer {
		if l.index >= totalLeaves {
			return false
		}
		if i > 0 && layer[i-1].index == l.index {
			return false
		}
	}

	proofIdx := 0
	layerSize := totalLeaves

	for layerSize > 1 {
		var parents []authorityLeaf
		i := 0
		for i < len(layer) {
			node := layer[i]
			siblingIndex := node.index ^ 1 // index-1 if odd, index+1 if even

			switch {
			case i+1 < len(layer) && layer[i+1].index == siblingIndex:
				// Sibling is also being proven directly; no proof hash
				// consumed for this pair.
				sibling := layer[i+1]
				parents = append(parents, authorityLeaf{
					index: node.index / 2,
					hash:  mergeOrdered(host, node, sibling),
				})
				i += 2

			case siblingIndex < layerSize:
				// Sibling exists in the tree but wasn't proven directly;
				// it must come from the proof.
				if proofIdx >= len(proof) {
					return false
				}
				sibling := authorityLeaf{index: siblingIndex, hash: proof[proofIdx]}
				proofIdx++
				parents = append(parents, authorityLeaf{
					index: node.index / 2,
					hash:  mergeOrdered(host, node, sibling),
				})
				i++

			default:
				// node.index is the last, unpaired node at this level:
				// carried up to the parent level unchanged.
				parents = append(parents, authorityLeaf{index: node.index / 2, hash: node.hash})
				i++
			}
		}
		layer = parents
		layerSize = (layerSize + 1) / 2
	}

	if proofIdx != len(proof) {
		// Proof carries leftover hashes the traversal never consumed:
		// not a proof for this (root, indices, totalLeaves).
		return false
	}

	return len(layer) == 1 && layer[0].hash == root
}

// mergeOrdered hashes a pair of sibling nodes in left-right order
// regardless of which one is "node" vs "sibling" in the caller.
func mergeOrdered(host Host, node, sibling authorityLeaf) Hash {
	var left, right authorityLeaf
	if node.index%2 == 0 {
		left, right = node, sibling
	} else {
		left, right = sibling, node
	}
	buf := make([]byte, 0, 2*HashLength)
	buf = append(buf, left.hash[:]...)
	buf = append(buf, right.hash[:]...)
	return host.Keccak256(buf)
}
