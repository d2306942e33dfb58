// Package beefy implements the verifier core of a BEEFY light client: it
// ingests periodic MMR-update proofs from a BEEFY-enabled relay chain and
// advances a local view of the current/next validator sets and the latest
// MMR root, without running a full node.
//
// The package is a pure verification engine. It performs no I/O of its
// own; all reads and writes go through the StorageReader/StorageWriter
// interfaces, and all cryptography goes through the Host interface. See
// client.go for the stateful wrapper most callers want, and update.go for
// the underlying pure ingestion function.
package beefy

import (
	snowfork "github.com/snowfork/go-substrate-rpc-client/v4/types"
)

// Hash is a 32-byte keccak digest: an MMR root, an authority-set root, or
// a commitment/leaf hash. Aliased to the SCALE-aware H256 type so that
// fixtures decoded off a real relay chain (hex strings, RPC responses)
// are usable directly.
type Hash = snowfork.H256

const (
	// HashLength is the byte length of every hash in this package.
	HashLength = 32

	// SignatureLength is the byte length of a BEEFY commitment signature:
	// 32-byte r, 32-byte s, 1-byte recovery id (27 or 28).
	SignatureLength = 65
)

// MMRRootPayloadID is the 2-byte commitment-payload tag carrying the MMR
// root hash, encoded as the ASCII bytes "mh".
var MMRRootPayloadID = [2]byte{'m', 'h'}

// PayloadItem is one (id, value) entry of a Commitment's payload.
type PayloadItem struct {
	ID    [2]byte
	Value []byte
}

// Payload is the ordered list of payload entries a commitment carries.
// Exactly one entry is expected to carry id MMRRootPayloadID with a
// 32-byte value (the MMR root at BlockNumber); see Payload.MMRRoot.
type Payload []PayloadItem

// MMRRoot returns the value of the first payload entry tagged
// MMRRootPayloadID, and whether one was found. A payload with more than
// one "mh" entry uses the first, matching upstream behaviour.
func (p Payload) MMRRoot() ([]byte, bool) {
	for _, item := range p {
		if item.ID == MMRRootPayloadID {
			return item.Value, true
		}
	}
	return nil, false
}

// Commitment is the object BEEFY validators sign: a block number, the
// validator-set id that produced the signatures, and a payload carrying
// (among other things) the MMR root at that block.
type Commitment struct {
	Payload        Payload
	BlockNumber    uint32
	ValidatorSetID uint64
}

// CommitmentSignature is one entry of a SignedCommitment's signature
// sequence: a 65-byte ECDSA signature, or absence if the validator at
// that position did not sign.
type CommitmentSignature struct {
	Present   bool
	Signature [SignatureLength]byte
}

// SignedCommitment pairs a Commitment with one (possibly absent) signature
// per validator in the signing set. len(Signatures) equals the signing
// validator set's size.
type SignedCommitment struct {
	Commitment Commitment
	Signatures []CommitmentSignature
}

// BeefyNextAuthoritySet describes a BEEFY validator committee: its epoch
// id, size, and the keccak-Merkle root over its members' Ethereum-style
// addresses (leaf i = keccak256(address of validator i)).
type BeefyNextAuthoritySet struct {
	ID   uint64
	Len  uint32
	Root Hash
}

// MmrLeaf is the latest MMR leaf carried by an update proof. It commits to
// the parent relay-chain block, the next authority set (enabling
// rotation), and the parachain-heads root (out of scope for this
// verifier beyond being part of the hashed leaf).
type MmrLeaf struct {
	Version               uint8
	ParentNumber          uint32
	ParentHash            Hash
	BeefyNextAuthoritySet BeefyNextAuthoritySet
	ParachainHeads        Hash
}

// MmrLeafWithIndex pairs a leaf with its position in the MMR.
type MmrLeafWithIndex struct {
	Index uint64
	Leaf  MmrLeaf
}

// MmrUpdateProof is the complete proof object an MMR-update carries: a
// signed commitment, the latest MMR leaf and its index, the MMR inclusion
// proof for that leaf, and the authority-Merkle proof witnessing that the
// commitment's signers belong to the active authority set.
type MmrUpdateProof struct {
	SignedCommitment       SignedCommitment
	LatestMmrLeafWithIndex MmrLeafWithIndex
	MmrProof               []Hash
	AuthorityProof         []Hash
}

// AuthoritySet is the verifier's view of the current and next BEEFY
// validator committees. Invariant: Next.ID == Current.ID + 1.
type AuthoritySet struct {
	Current BeefyNextAuthoritySet
	Next    BeefyNextAuthoritySet
}

// MmrState is the verifier's view of relay-chain finality progress:
// the height of the last successfully ingested commitment and the MMR
// root it carried.
type MmrState struct {
	LatestBeefyHeight uint32
	MmrRootHash       Hash
}
