package beefy

import (
	errorsmod "cosmossdk.io/errors"
)

// threshold computes the minimum signer count accepted for an authority
// set of the given size: floor(2*len/3) + 1.
func threshold(set BeefyNextAuthoritySet) uint32 {
	return uint32((2*uint64(set.Len))/3) + 1
}

// IngestMMRUpdate is the pure ingestion engine described by the
// ingestion-engine component: given the current (AuthoritySet, MmrState)
// and an update proof, it returns the state to commit on success, or a
// typed error. It performs no storage I/O of its own — Client.IngestMMRUpdate
// reads the state this function needs and writes back what it returns.
//
// Running this function twice on identical inputs yields identical
// outputs, and a failed call never mutates anything (there is nothing for
// it to mutate: all writes are expressed purely in its return values).
func IngestMMRUpdate(host Host, authorities AuthoritySet, state MmrState, proof MmrUpdateProof) (AuthoritySet, MmrState, error) {
	commitment := proof.SignedCommitment.Commitment
	signatures := proof.SignedCommitment.Signatures

	// Step 2: threshold gate. Counts only Present signatures: a vector
	// sized to the full active set but mostly absent must not pass just
	// because its slot count matches the set length, since that would
	// make this gate a no-op against a well-formed commitment regardless
	// of how many validators actually signed. Diverges from a literal
	// reading of the upstream length check for this reason; see DESIGN.md.
	var n uint32
	for _, sig := range signatures {
		if sig.Present {
			n++
		}
	}
	currentThreshold := threshold(authorities.Current)
	nextThreshold := threshold(authorities.Next)
	if n < currentThreshold && n < nextThreshold {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidMmrUpdate,
			"signature count %d below threshold (current %d, next %d)", n, currentThreshold, nextThreshold)
	}

	// Step 3: validator-set selection. Defensive current/next collision
	// (impossible under the next.id == current.id+1 invariant) prefers
	// current.
	vsid := commitment.ValidatorSetID
	var activeSet BeefyNextAuthoritySet
	var authoritiesChanged bool
	switch {
	case vsid == authorities.Current.ID:
		activeSet = authorities.Current
		authoritiesChanged = false
	case vsid == authorities.Next.ID:
		activeSet = authorities.Next
		authoritiesChanged = true
	default:
		return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidMmrUpdate,
			"validator set id %d matches neither current (%d) nor next (%d)",
			vsid, authorities.Current.ID, authorities.Next.ID)
	}

	// Step 4: payload extraction.
	rootBytes, ok := commitment.Payload.MMRRoot()
	if !ok {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrap(ErrInvalidMmrUpdate, "commitment payload carries no mmr root entry")
	}
	if len(rootBytes) != HashLength {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidRootHash, "mmr root payload has length %d, want %d", len(rootBytes), HashLength)
	}
	var mmrRoot Hash
	copy(mmrRoot[:], rootBytes)

	// Step 5: signature recovery.
	msg := host.Keccak256(commitment.Encode())

	indices := make([]uint32, 0, len(signatures))
	leaves := make([]Hash, 0, len(signatures))
	for i, sig := range signatures {
		if !sig.Present {
			continue
		}
		// Upstream drops a signature silently here if its raw wire length
		// isn't 65 bytes. CommitmentSignature.Signature is already a
		// fixed [SignatureLength]byte array by the time it reaches this
		// function, so that length check has happened during decoding;
		// there is nothing left to re-check at this layer.

		pubkey, ok := host.Secp256k1EcdsaRecoverCompressed(sig.Signature, msg)
		if !ok {
			return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidSignature, "failed to recover signature at position %d", i)
		}

		address, ok := host.BeefyAddressOf(pubkey)
		if !ok {
			return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidSignature, "failed to derive address for signature at position %d", i)
		}

		indices = append(indices, uint32(i))
		leaves = append(leaves, host.Keccak256(address[:]))
	}

	// Step 6: authority Merkle verification.
	if !VerifyAuthorityProof(host, activeSet.Root, indices, leaves, activeSet.Len, proof.AuthorityProof) {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrap(ErrInvalidAuthorityProof, "authority merkle proof does not verify against the active set root")
	}

	// Step 7: monotonicity.
	if commitment.BlockNumber <= state.LatestBeefyHeight {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrapf(ErrInvalidMmrUpdate,
			"block number %d does not advance latest height %d", commitment.BlockNumber, state.LatestBeefyHeight)
	}

	// Step 8: MMR verification.
	leaf := proof.LatestMmrLeafWithIndex.Leaf
	leafIndex := proof.LatestMmrLeafWithIndex.Index
	leafCount := leafIndex + 1
	leafHash := host.Keccak256(leaf.Encode())
	if !VerifyMMRLeafProof(host, mmrRoot, leafHash, leafIndex, leafCount, proof.MmrProof) {
		return AuthoritySet{}, MmrState{}, errorsmod.Wrap(ErrInvalidMmrProof, "mmr inclusion proof does not verify against the payload mmr root")
	}

	// Step 9: compute new state.
	newState := MmrState{
		LatestBeefyHeight: commitment.BlockNumber,
		MmrRootHash:       mmrRoot,
	}

	newAuthorities := authorities
	if authoritiesChanged {
		newAuthorities = AuthoritySet{
			Current: authorities.Next,
			Next:    leaf.BeefyNextAuthoritySet,
		}
	}

	return newAuthorities, newState, nil
}
